package model

import "html/template"

// PageData is what the page shell is executed with.
type PageData struct {
	Lang       string
	SiteTitle  string
	PageTitle  string
	Content    template.HTML
	IndexURL   string
	Stylesheet string
	Generated  string
}
