/*
Package vhostfile loads virtual hosts and environments from a YAML or a
TOML document into a vhost.Manager.

A YAML example:

	virtualHosts:
	- domain: www.example.com
	- domain: api.example.com
	  canonical: {scheme: https, host: api.example.com, port: 443, contextPath: /, prefix: /v1/}
	  rules:
	  - name: Not
	    rules:
	    - name: StartsWith
	      args: [/internal/]

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

Empty pattern fields are unset and match any request value. The rules are
created with the pathrule package.
*/
package vhostfile
