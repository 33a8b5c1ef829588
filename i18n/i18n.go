// Package i18n translates bg3loc's own user-facing messages.
//
// English is built in; other catalogs are embedded from
// locales/{lang}/LC_MESSAGES/bg3loc.po. Only zh_CN ships today, which is
// also the language the tool translates mods into by default.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "bg3loc"

// catalogs maps a normalized language tag to an embedded catalog.
var catalogs = map[string]string{
	"zh":      "zh_CN",
	"zh_cn":   "zh_CN",
	"zh_sg":   "zh_CN",
	"zh_hans": "zh_CN",
}

var po *gotext.Locale

// Init selects the message catalog and returns its name, or "" when
// messages stay in English. An empty lang consults BG3LOC_LANG, every
// entry of LANGUAGE, then LC_ALL, LC_MESSAGES and LANG; the first
// candidate that is English or has a catalog wins.
func Init(lang string) string {
	candidates := []string{lang}
	if lang == "" {
		candidates = envCandidates()
	}

	po = nil
	for _, c := range candidates {
		name, ok := catalogFor(c)
		if !ok {
			continue
		}
		if name != "" {
			po = gotext.NewLocaleFSWithPath(name, locales, "locales")
			po.AddDomain(domain)
			po.SetDomain(domain)
		}
		return name
	}
	return ""
}

// T translates msgid, returning it unchanged when no catalog is active.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N picks the plural form for n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func envCandidates() []string {
	var out []string
	if v := os.Getenv("BG3LOC_LANG"); v != "" {
		out = append(out, v)
	}
	out = append(out, strings.Split(os.Getenv("LANGUAGE"), ":")...)
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		out = append(out, os.Getenv(env))
	}
	return out
}

// catalogFor resolves a locale such as "zh_CN.UTF-8" or "zh-Hans". ok is
// false when tag says nothing (empty, C, POSIX) or names a language
// without a catalog, so the caller moves on to the next candidate.
// English resolves to "" with ok set.
func catalogFor(tag string) (name string, ok bool) {
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(strings.ReplaceAll(tag, "-", "_"))
	switch {
	case tag == "" || tag == "c" || tag == "posix":
		return "", false
	case tag == "en" || strings.HasPrefix(tag, "en_"):
		return "", true
	}
	if name, ok := catalogs[tag]; ok {
		return name, true
	}
	// zh_Hans_CN and friends
	if strings.HasPrefix(tag, "zh_hans_") {
		return "zh_CN", true
	}
	return "", false
}
