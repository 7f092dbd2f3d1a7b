package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// PathParam returns a router path parameter. A trailing ".json" is accepted
// and dropped so /bus/singapore/list.json works like /bus/singapore/list.
func PathParam(r *http.Request, name string) string {
	value := httprouter.ParamsFromContext(r.Context()).ByName(name)
	return strings.TrimSpace(strings.TrimSuffix(value, ".json"))
}

// PathParamInt parses an integer path parameter, recording a field error
// under name when it is missing or malformed.
func PathParamInt(r *http.Request, name string, fieldErrors map[string][]string) (int, map[string][]string) {
	return ParseIntValue(PathParam(r, name), name, fieldErrors)
}
