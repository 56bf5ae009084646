package handler

import (
	"net/http"

	"github.com/calldeck/callquery/internal/api/response"
	"github.com/calldeck/callquery/internal/schema"
)

// DescribeSchema returns the tables the service answers questions over
func DescribeSchema(desc *schema.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"tables": desc.Tables(),
		})
	}
}
