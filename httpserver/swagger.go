package httpserver

import (
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "movieapi/docs"
)

func (s *Server) RegisterSwaggerRoutes() {
	s.Router.GET("/swagger/*", echoSwagger.WrapHandler)
}
