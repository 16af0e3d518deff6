// Package view renders the shop's HTML pages as templ components.
package view

import "strconv"

// PageData is the state every page needs for its navigation bar.
type PageData struct {
	LoggedIn bool
	Name     string
	Flash    string
}

// Product is one item of the glasses catalogue.
type Product struct {
	Name        string
	Description string
	PriceCents  int
}

// Price formats the product price in dollars.
func (p Product) Price() string {
	cents := p.PriceCents % 100
	if cents < 10 {
		return "$" + strconv.Itoa(p.PriceCents/100) + ".0" + strconv.Itoa(cents)
	}
	return "$" + strconv.Itoa(p.PriceCents/100) + "." + strconv.Itoa(cents)
}

// FormState carries submitted values and per-field errors back to a form.
// Password values are never echoed.
type FormState struct {
	Values map[string]string
	Errors map[string]string
	Next   string
}

func (f FormState) value(name string) string {
	return f.Values[name]
}
