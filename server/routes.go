package server

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxkit/component"
	"github.com/kbukum/voxkit/server/middleware"
)

var methodRank = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// closureSuffix matches the ".func1" or ".func1.2" Go appends to closures.
var closureSuffix = regexp.MustCompile(`(\.func\d+)+(\.\d+)*$`)

// routes lists the Gin routes for the startup summary: API routes by path
// first, then the probe endpoints marked with a gear.
func routes(engine *gin.Engine) []component.Route {
	infos := engine.Routes()
	slices.SortFunc(infos, func(a, b gin.RouteInfo) int {
		return cmp.Or(
			cmp.Compare(isProbe(a.Path), isProbe(b.Path)),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(rank(a.Method), rank(b.Method)),
		)
	})

	out := make([]component.Route, len(infos))
	for i, r := range infos {
		name := handlerName(r.Handler)
		if isProbe(r.Path) == 1 {
			name += " ⚙️"
		}
		out[i] = component.Route{Method: r.Method, Path: r.Path, Handler: name}
	}
	return out
}

// handlerName shortens a Go function name as reported by Gin:
// "github.com/kbukum/voxkit/server/endpoint.Transcribe.func1" becomes
// "transcribe" and "pkg.(*Server).Handler-fm" becomes "Server.Handler".
func handlerName(fn string) string {
	name := strings.TrimSuffix(fn, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)
	if trimmed := closureSuffix.ReplaceAllString(name, ""); trimmed != name {
		return strings.ToLower(trimmed)
	}
	return name
}

func isProbe(path string) int {
	if slices.Contains(middleware.ProbePaths, path) {
		return 1
	}
	return 0
}

func rank(method string) int {
	if i := slices.Index(methodRank, method); i >= 0 {
		return i
	}
	return len(methodRank)
}
