package handlers

import "github.com/microcosm-cc/bluemonday"

// free-text fields coming from clients are stripped of any markup before
// persistence; they are rendered back into web pages downstream
var sanitizer = bluemonday.StrictPolicy()
