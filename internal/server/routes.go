package server

import "github.com/go-chi/chi/v5"

func (s *Server) setupRoutes() {
	s.router.Get("/event", s.allEvents)

	s.router.Route("/session", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/chat", s.chat)

			r.Get("/files", s.listFiles)
			r.Get("/file", s.readFile)
			r.Put("/file", s.writeFile)
			r.Delete("/file", s.deleteFile)

			r.Get("/milestones", s.getMilestones)
			r.Put("/milestones", s.putMilestones)

			r.Get("/session-prompt", s.getSessionPrompt)
			r.Put("/session-prompt", s.putSessionPrompt)

			r.Get("/context-config", s.getContextConfig)
			r.Put("/context-config", s.putContextConfig)

			r.Get("/context-preview", s.contextPreview)
		})
	})

	s.router.Get("/profile", s.getProfile)
	s.router.Put("/profile", s.putProfile)
	s.router.Get("/system-prompt", s.getSystemPrompt)
	s.router.Put("/system-prompt", s.putSystemPrompt)
}
