package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sofatutor/copilot-metrics-gateway/internal/service"
)

// request builds the service view of an API call.
func (s *Server) request(c *gin.Context) service.Request {
	return service.Request{
		URI:     c.Request.URL.RequestURI(),
		Query:   c.Request.URL.Query(),
		Session: s.loadSession(c),
		Locale:  primaryLanguage(c.GetHeader("Accept-Language")),
	}
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	return tag
}

func (s *Server) handleMetricsData(c *gin.Context) {
	req := s.request(c)
	days, err := s.deps.API.Metrics(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, days)
}

func (s *Server) handleGitHubStats(c *gin.Context) {
	req := s.request(c)
	stats, err := s.deps.API.GitHubStats(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSeats(c *gin.Context) {
	req := s.request(c)
	seats, err := s.deps.API.Seats(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, seats)
}

func (s *Server) handleTeams(c *gin.Context) {
	req := s.request(c)
	teams, err := s.deps.API.Teams(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (s *Server) handleTeamMetrics(c *gin.Context) {
	req := s.request(c)
	series, err := s.deps.API.TeamMetrics(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) handleTeamComparisons(c *gin.Context) {
	req := s.request(c)
	cmp, err := s.deps.API.TeamComparisons(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, req.Session)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// handleLogout clears the login session.
func (s *Server) handleLogout(c *gin.Context) {
	if !s.sessions {
		c.Status(http.StatusNoContent)
		return
	}
	actor := ""
	if sess := s.loadSession(c); sess != nil {
		actor, _ = sess.Identity.Username()
	}
	if err := ClearSession(c); err != nil {
		s.writeError(c, err, nil)
		return
	}
	s.deps.Audit.LogLogout(c.Request.Context(), actor, c.ClientIP())
	c.Status(http.StatusNoContent)
}
