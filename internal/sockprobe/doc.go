// Package sockprobe implements a non-blocking readiness check for socket
// descriptors. It is used by the connection pool to decide whether an idle
// connection is still usable before handing it out.
package sockprobe
