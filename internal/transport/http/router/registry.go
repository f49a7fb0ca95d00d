package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule mounts its own routes, middleware chains included.
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// Lower priorities mount first; modules without one default to 100.
type prioritizer interface{ Priority() int }

func MountAll(g *gin.RouterGroup, mods ...APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
