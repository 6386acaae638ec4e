package router

import (
	"testing"

	tg "recbot/core/telegram"
	"recbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// tapCtx simulates one inline-button tap. Only the methods the callback
// route touches are implemented.
type tapCtx struct {
	tele.Context
	sender    *tele.User
	chat      *tele.Chat
	callback  *tele.Callback
	store     map[string]any
	responses []*tele.CallbackResponse
}

func newTapCtx(userID int64, data string) *tapCtx {
	return &tapCtx{
		sender:   &tele.User{ID: userID},
		chat:     &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		callback: &tele.Callback{Data: data},
		store:    make(map[string]any),
	}
}

func (c *tapCtx) Sender() *tele.User        { return c.sender }
func (c *tapCtx) Chat() *tele.Chat          { return c.chat }
func (c *tapCtx) Callback() *tele.Callback  { return c.callback }
func (c *tapCtx) Update() tele.Update       { return tele.Update{ID: 7, Callback: c.callback} }
func (c *tapCtx) Text() string              { return "" }
func (c *tapCtx) Get(key string) any        { return c.store[key] }
func (c *tapCtx) Set(key string, value any) { c.store[key] = value }

func (c *tapCtx) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		c.responses = append(c.responses, &tele.CallbackResponse{})
		return nil
	}
	c.responses = append(c.responses, resp[0])
	return nil
}

func TestCallbackAdminGateAnswersOnce(t *testing.T) {
	reg := tg.NewRegistry()
	called := false
	err := reg.RegisterCallback("wipe", tg.Callback{
		AdminOnly: true,
		Handler: func(c tele.Context) error {
			called = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}

	route := CallbackRoute(reg, CallbackOptions{
		Admin: middleware.AdminOptions{IsAdmin: func(id int64) bool { return id == 1 }},
	})

	denied := newTapCtx(2, "wipe:films:9")
	if err := route.Handler(denied); err != nil {
		t.Fatalf("denied tap: %v", err)
	}
	if called {
		t.Fatal("handler ran for a denied user")
	}
	if len(denied.responses) != 1 {
		t.Fatalf("denied tap answered %d times, want 1", len(denied.responses))
	}
	if got := denied.responses[0].Text; got != "Admins only." {
		t.Errorf("denial text = %q, want %q", got, "Admins only.")
	}

	allowed := newTapCtx(1, "wipe:films:9")
	if err := route.Handler(allowed); err != nil {
		t.Fatalf("allowed tap: %v", err)
	}
	if !called {
		t.Fatal("handler did not run for an allowed user")
	}
	if len(allowed.responses) != 1 {
		t.Fatalf("allowed tap answered %d times, want 1", len(allowed.responses))
	}
	if got := allowed.responses[0].Text; got != "" {
		t.Errorf("allowed tap ack carried text %q, want plain ack", got)
	}
}

func TestCallbackUnknownVerbAnswersOnce(t *testing.T) {
	reg := tg.NewRegistry()
	route := CallbackRoute(reg, CallbackOptions{})

	c := newTapCtx(5, "bogus:1")
	if err := route.Handler(c); err != nil {
		t.Fatalf("unknown tap: %v", err)
	}
	if len(c.responses) != 1 {
		t.Fatalf("unknown tap answered %d times, want 1", len(c.responses))
	}
	if got := c.responses[0].Text; got != "Unsupported action" {
		t.Errorf("fallback text = %q, want %q", got, "Unsupported action")
	}
}
