// Package router groups the HTTP routes of the server.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts routes on a group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegistrarFunc adapts a plain function to RouteRegistrar
type RegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes calls f
func (f RegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

// Scope selects the group a registrar is mounted on
type Scope int

const (
	// ScopeRoot mounts at "/" (health, metrics)
	ScopeRoot Scope = iota
	// ScopePublic mounts at "/api" (the public form endpoints)
	ScopePublic
	// ScopeVersioned mounts at "/api/<version>"
	ScopeVersioned
)

type registration struct {
	scope     Scope
	registrar RouteRegistrar
}

// Router collects registrars and mounts them on the engine in Setup
type Router struct {
	engine        *gin.Engine
	apiVersion    string
	registrations []registration
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the versioned group
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router for engine; the API version defaults to v1
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// APIVersion returns the version segment
func (r *Router) APIVersion() string {
	return r.apiVersion
}

// Register adds a registrar to the versioned group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	return r.RegisterIn(ScopeVersioned, registrar)
}

// RegisterIn adds a registrar to the given scope
func (r *Router) RegisterIn(scope Scope, registrar RouteRegistrar) *Router {
	r.registrations = append(r.registrations, registration{scope: scope, registrar: registrar})
	return r
}

// Setup mounts every registrar in registration order
func (r *Router) Setup() {
	groups := map[Scope]*gin.RouterGroup{
		ScopeRoot:      &r.engine.RouterGroup,
		ScopePublic:    r.engine.Group("/api"),
		ScopeVersioned: r.engine.Group("/api/" + r.apiVersion),
	}
	for _, reg := range r.registrations {
		reg.registrar.RegisterRoutes(groups[reg.scope])
	}
}

// DomainGroup declares the routes of one resource under a prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("GET", path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("POST", path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("PUT", path, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("PATCH", path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("DELETE", path, handlers)
}

// Group creates a sub-group within this group
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
