package api

import (
	"net/http"

	"github.com/JaimeStill/docsort/pkg/routes"
)

// groups lists the route groups of every domain system, mounted under the
// API base path.
func (d *Domain) groups() []routes.Group {
	return []routes.Group{
		d.Classifications.Handler().Routes(),
		d.Learning.Handler().Routes(),
	}
}

func (d *Domain) mux() *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, d.groups()...)
	return mux
}
