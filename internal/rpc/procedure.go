// Package rpc exposes typed procedures over HTTP.
//
// Queries are served on GET /<name>?input=<json> and mutations on
// POST /<name> with a JSON body. Successful calls answer {"result": ...};
// failures answer {"error": {"code", "message", "fields"}} through
// ErrorHandler.
package rpc

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/studytrack-api/internal/models"
)

type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Call carries the per-request state a procedure may need.
type Call struct {
	Ctx  context.Context
	User *models.User
	// HTTP is the underlying request, used by procedures that manage the
	// session cookie.
	HTTP *fiber.Ctx
}

// Guard decides whether a call may proceed.
type Guard func(*Call) error

func Public(*Call) error { return nil }

func Authed(c *Call) error {
	if c.User == nil {
		return ErrUnauthorized
	}
	return nil
}

func Admin(c *Call) error {
	if err := Authed(c); err != nil {
		return err
	}
	if !c.User.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Empty is the input of procedures that take none.
type Empty struct{}

type procedure struct {
	kind   Kind
	guard  Guard
	invoke func(c *Call, raw []byte) (interface{}, error)
}

type Router struct {
	procs map[string]*procedure
	user  func(*fiber.Ctx) *models.User
}

// NewRouter returns an empty router. user resolves the caller of a request
// and may return nil for anonymous calls.
func NewRouter(user func(*fiber.Ctx) *models.User) *Router {
	if user == nil {
		user = func(*fiber.Ctx) *models.User { return nil }
	}
	return &Router{procs: map[string]*procedure{}, user: user}
}

func Query[In, Out any](r *Router, name string, guard Guard, fn func(*Call, In) (Out, error)) {
	r.add(name, KindQuery, guard, bind(fn))
}

func Mutation[In, Out any](r *Router, name string, guard Guard, fn func(*Call, In) (Out, error)) {
	r.add(name, KindMutation, guard, bind(fn))
}

func (r *Router) add(name string, kind Kind, guard Guard, invoke func(*Call, []byte) (interface{}, error)) {
	if _, dup := r.procs[name]; dup {
		panic("rpc: procedure registered twice: " + name)
	}
	r.procs[name] = &procedure{kind: kind, guard: guard, invoke: invoke}
}

// bind decodes and validates the raw input before handing it to fn.
func bind[In, Out any](fn func(*Call, In) (Out, error)) func(*Call, []byte) (interface{}, error) {
	return func(c *Call, raw []byte) (interface{}, error) {
		var in In
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, BadRequest("Invalid input: " + err.Error())
			}
		}
		if err := Validate(in); err != nil {
			return nil, err
		}
		return fn(c, in)
	}
}

// Names lists registered procedures in lexical order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.procs))
	for name := range r.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs a procedure directly, bypassing HTTP. The guard still applies.
func (r *Router) Call(c *Call, name string, input interface{}) (interface{}, error) {
	p, ok := r.procs[name]
	if !ok {
		return nil, NotFound("No procedure found on path \"" + name + "\"")
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, BadRequest("Invalid input: " + err.Error())
	}
	return r.run(p, c, raw)
}

func (r *Router) run(p *procedure, c *Call, raw []byte) (interface{}, error) {
	guard := p.guard
	if guard == nil {
		guard = Public
	}
	if err := guard(c); err != nil {
		return nil, err
	}
	return p.invoke(c, raw)
}

// Mount serves every procedure under g.
func (r *Router) Mount(g fiber.Router) {
	g.Get("/:name", r.serve(KindQuery))
	g.Post("/:name", r.serve(KindMutation))
}

type Response struct {
	Result interface{} `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

func (r *Router) serve(kind Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		p, ok := r.procs[name]
		if !ok {
			return NotFound("No procedure found on path \"" + name + "\"")
		}
		if p.kind != kind {
			return &Error{
				Code:    CodeMethodNotSupported,
				Message: "Unsupported " + kind.String() + " call to " + p.kind.String() + " procedure",
			}
		}

		var raw []byte
		if kind == KindQuery {
			raw = []byte(c.Query("input"))
		} else {
			raw = c.Body()
		}

		call := &Call{Ctx: c.UserContext(), User: r.user(c), HTTP: c}
		out, err := r.run(p, call, raw)
		if err != nil {
			return err
		}
		return c.JSON(result{Result: out})
	}
}

// result always emits the key so that a null result stays distinguishable
// from a missing one.
type result struct {
	Result interface{} `json:"result"`
}
