package modules

import "strings"

var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"sys": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true,
}

// isNodeBuiltin checks if a bare specifier names a Node.js builtin.
// Subpaths such as "fs/promises" count as their base module.
func isNodeBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, "node:") {
		return true
	}
	base := specifier
	if i := strings.IndexByte(base, '/'); i >= 0 {
		base = base[:i]
	}
	return nodeBuiltins[base]
}

// PackageName extracts the package name from a bare specifier:
// "@scope/pkg/sub" -> "@scope/pkg", "pkg/sub" -> "pkg".
func PackageName(specifier string) string {
	// Handle scoped packages: @scope/package/subpath -> @scope/package
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
		return specifier
	}

	// Handle unscoped packages: package/subpath -> package
	parts := strings.Split(specifier, "/")
	if len(parts) > 0 {
		return parts[0]
	}

	return specifier
}

// TypesPackageName returns the DefinitelyTyped package that ships typings
// for pkg: "lodash" -> "@types/lodash", "@babel/core" -> "@types/babel__core".
func TypesPackageName(pkg string) string {
	if strings.HasPrefix(pkg, "@types/") {
		return ""
	}
	if strings.HasPrefix(pkg, "@") {
		return "@types/" + strings.Replace(strings.TrimPrefix(pkg, "@"), "/", "__", 1)
	}
	return "@types/" + pkg
}
