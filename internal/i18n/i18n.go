// Package i18n localizes the user-facing messages of the category endpoints.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	MsgGenericError  = "Oops, apologies - there was some error"
	MsgParentMissing = "Requested parent node doesn't exist"
	MsgNodeMissing   = "Requested node doesn't exist"
	MsgDuplicateName = "There is already a category with that name"
	MsgAnonymous     = "Sorry, but anonymous users cannot access this view"
	MsgNotAdmin      = "Sorry, but you cannot access this view"
)

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		MsgGenericError:  "Vaya, disculpas: se ha producido un error",
		MsgParentMissing: "El nodo padre solicitado no existe",
		MsgNodeMissing:   "El nodo solicitado no existe",
		MsgDuplicateName: "Ya existe una categoría con ese nombre",
		MsgAnonymous:     "Lo sentimos, los usuarios anónimos no pueden acceder a esta vista",
		MsgNotAdmin:      "Lo sentimos, no puede acceder a esta vista",
	},
	language.German: {
		MsgGenericError:  "Hoppla, Entschuldigung - es ist ein Fehler aufgetreten",
		MsgParentMissing: "Der angeforderte übergeordnete Knoten existiert nicht",
		MsgNodeMissing:   "Der angeforderte Knoten existiert nicht",
		MsgDuplicateName: "Es gibt bereits eine Kategorie mit diesem Namen",
		MsgAnonymous:     "Anonyme Benutzer können diese Ansicht leider nicht aufrufen",
		MsgNotAdmin:      "Sie können diese Ansicht leider nicht aufrufen",
	},
}

// Localizer picks a language from an Accept-Language header and translates keys.
type Localizer struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	fallback language.Tag
}

// New creates a Localizer. defaultLang is used when the request names no
// supported language; unknown or empty values fall back to English.
func New(defaultLang string) *Localizer {
	fallback := language.English
	if defaultLang != "" {
		if tag, err := language.Parse(defaultLang); err == nil {
			fallback = tag
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	supported := []language.Tag{fallback}
	if fallback != language.English {
		supported = append(supported, language.English)
	}
	for tag, msgs := range translations {
		for key, text := range msgs {
			b.SetString(tag, key, text)
		}
		if tag != fallback {
			supported = append(supported, tag)
		}
	}

	return &Localizer{
		catalog:  b,
		matcher:  language.NewMatcher(supported),
		fallback: fallback,
	}
}

// Match returns the best supported language for an Accept-Language value
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return l.fallback
	}
	tag, _ := language.MatchStrings(l.matcher, acceptLanguage)
	// Translations are per base language; drop region and -u- extensions
	base, _ := tag.Base()
	return language.Make(base.String())
}

// Printer returns a message printer for the given Accept-Language value
func (l *Localizer) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(l.Match(acceptLanguage), message.Catalog(l.catalog))
}

// Translate returns key in the language matching acceptLanguage
func (l *Localizer) Translate(acceptLanguage, key string) string {
	return l.Printer(acceptLanguage).Sprintf(key)
}
