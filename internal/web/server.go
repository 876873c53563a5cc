// Package web serves imported report data as a small JSON API, meant for
// ad-hoc dashboards on top of the scenario database.
package web

import (
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"onestat/internal/db"
)

type Server struct {
	db   *db.DB
	addr string
}

func NewServer(database *db.DB, addr string) *Server {
	return &Server{db: database, addr: addr}
}

func (s *Server) Start(openBrowser bool) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/scenarios/", s.handleScenario)
	mux.HandleFunc("/api/aggregate", s.handleAggregate)

	if openBrowser {
		url := fmt.Sprintf("http://localhost%s", s.addr)
		go openURL(url)
	}

	fmt.Printf("Starting server at http://localhost%s\n", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
