/*
Package vhosts resolves HTTP requests to virtual hosts.

A virtual host is a logical site identified by a domain name, independent
of the URLs it is reached on. Environments, e.g. production or
development, map partially specified URL patterns to the virtual hosts.
A pattern has five optional fields: scheme, host, port, context path and
prefix. The unset fields match any request value.

The registry keeps a single search order over all environments. A
pattern belongs to the environment that registered it first, and the
first pattern in the search order that matches the request wins. The
part of the request path below the matched prefix is the virtual path,
the path inside the namespace of the virtual host.

# Quickstart

Define the virtual hosts and the environments in a YAML or TOML file:

	virtualHosts:
	- domain: www.example.com
	environments:
	- name: production
	  mappings:
	  - domain: www.example.com
	    patterns:
	    - {scheme: https, host: www.example.com, port: 443, contextPath: /}
	- name: development
	  mappings:
	  - domain: www.example.com
	    patterns:
	    - {scheme: http, host: localhost, port: 8080, prefix: /www/}

Check it, and resolve a URL with it:

	vhosts check vhosts.yaml
	vhosts search vhosts.yaml http://localhost:8080/www/index.html

Serve the resolution over HTTP:

	vhosts serve -vhosts-file vhosts.yaml -address :9090

# Packages

The net package contains the validated value types: domain names, host
addresses, ports and paths. The pattern package implements the URL
patterns. The vhost package contains the registry, the search, the per
request match and the HTTP middleware, and vhost/pathrule the rules that
restrict a virtual host by the virtual path. The vhostfile package loads
the definition files.

# Embedding

The registry can be populated in code:

	m := vhost.NewManager(vhost.Options{})
	www, _ := net.ParseDomainName("www.example.com")
	m.NewVirtualHost(www, nil)

	dev, _ := m.NewEnvironment("development")
	p, _ := pattern.New(pattern.Fields{Scheme: "http", Prefix: net.MustParsePath("/www/")})
	dev.AddDomain(www, p)

	http.ListenAndServe(":9090", vhost.Handler(vhost.HandlerOptions{
		Manager: m,
		Next:    app,
	}))

The handler stores the match in the request context, where it can be read
with vhost.MatchFromRequest.
*/
package vhosts
