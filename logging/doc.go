/*
Package logging implements application log instrumentation and the access
log.

# Application Log

The application log uses the logrus package:

https://github.com/sirupsen/logrus

To send messages to the application log, import this package and use its
methods. Example:

	import log "github.com/sirupsen/logrus"

	func doSomething() {
	    log.Errorf("nothing to do")
	}

Components that accept a Logger in their options fall back to New(),
which writes to the logrus standard logger.

During startup initialization, it is possible to redirect the log output
from the default /dev/stderr to another file, to set the level, to
switch to JSON output, and to set a common prefix for each log entry.
Setting the prefix may be a good idea when the access log is enabled and
its output is the same as the one of the application log, to make it
easier to split the output for diagnostics.

# Access Log

The access log prints one line per request: the client address, the
time, the request line, the status, the response size, the duration in
milliseconds, the requested host, and the environment and the virtual
path that the request was resolved to:

	127.0.0.1 [10/Oct/2000:13:55:36 -0700] "GET /www/index.html HTTP/1.1" 200 2326 3ms localhost:8080 environment=development virtual-path=www.example.com:/index.html

Unresolved requests have a dash in place of the environment and the
virtual path. To output entries, use the LogAccess function, or wrap a
handler with NewHandler.
*/
package logging
