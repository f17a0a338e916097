package http

import (
	"net/http"
)

// RouterConfig wires handlers and middleware into the gateway router.
// Session guards every route except the auth endpoints.
type RouterConfig struct {
	Auth       *AuthHandler
	Events     *EventHandler
	Social     *SocialHandler
	Chat       *ChatHandler
	Session    func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := cfg.Session
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	private := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, guard(handler))
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /auth/signup", cfg.Auth.SignUp)
		mux.HandleFunc("POST /auth/signin", cfg.Auth.SignIn)
		mux.HandleFunc("POST /auth/signout", cfg.Auth.SignOut)
		mux.HandleFunc("GET /auth/oauth/{provider}", cfg.Auth.Provider)
	}

	if cfg.Events != nil {
		private("GET /events", cfg.Events.List)
		private("POST /events", cfg.Events.Create)
		private("GET /events/{id}", cfg.Events.Get)
		private("PUT /events/{id}", cfg.Events.Update)
		private("DELETE /events/{id}", cfg.Events.Delete)
		private("POST /events/{id}/tickets", cfg.Events.BuyTicket)
		private("GET /tickets", cfg.Events.ListTickets)
		private("GET /events/{id}/ratings", cfg.Events.ListRatings)
		private("PUT /events/{id}/ratings", cfg.Events.Rate)
		private("GET /rpc/{name}", cfg.Events.CallScalar)
	}

	if cfg.Chat != nil {
		private("GET /events/{id}/messages", cfg.Chat.ListMessages)
		private("POST /events/{id}/messages", cfg.Chat.SendMessage)
		private("GET /events/{id}/messages/subscribe", cfg.Chat.Subscribe)
		private("GET /events/{id}/breakout-rooms", cfg.Chat.ListBreakoutRooms)
	}

	if cfg.Social != nil {
		private("GET /profiles", cfg.Social.ListProfiles)
		private("GET /friendships", cfg.Social.ListFriendships)
		private("POST /friendships", cfg.Social.CreateFriendship)
		private("PATCH /friendships", cfg.Social.UpdateFriendship)
		private("DELETE /friendships", cfg.Social.DeleteFriendship)
		private("GET /settings", cfg.Social.GetSettings)
		private("PUT /settings", cfg.Social.SaveSettings)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
