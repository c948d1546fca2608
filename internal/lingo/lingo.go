// Package lingo moves text between the user's language and the
// canonical processing language. Facts are always collected and
// drafted in the canonical language; replies are translated back when
// the session carries a preference.
package lingo

import (
	"context"
	"fmt"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"
)

// Canonical is the single internal processing language.
const Canonical = "en-IN"

// Language is one selectable reply language.
type Language struct {
	Code  string
	Label string
}

// Supported lists the languages offered in the intake menu, canonical
// first. Order is the menu order.
var Supported = []Language{
	{Code: "en-IN", Label: "English"},
	{Code: "hi-IN", Label: "हिंदी"},
	{Code: "bn-IN", Label: "বাংলা"},
	{Code: "ta-IN", Label: "தமிழ்"},
	{Code: "te-IN", Label: "తెలుగు"},
	{Code: "mr-IN", Label: "मराठी"},
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(Supported))
	for _, l := range Supported {
		tags = append(tags, language.MustParse(l.Code))
	}
	matcher = language.NewMatcher(tags)
}

// MatchTag resolves a free-form language tag ("hi", "hi-IN", "hin")
// against the supported set. Returns the supported code and whether
// the match was confident.
func MatchTag(raw string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Canonical, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return Canonical, false
	}
	return Supported[idx].Code, true
}

// IsCanonical reports whether the tag is empty or the canonical
// language, both of which make translation an identity operation.
func IsCanonical(lang string) bool {
	lang = strings.TrimSpace(lang)
	return lang == "" || strings.EqualFold(lang, Canonical)
}

// Translator is the external translation provider. The second return
// is the detected source language when sourceLang is "unknown".
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, string, error)
}

// Normalizer performs bidirectional translation with fallback to the
// original text on provider failure. Repeated prompts are memoized.
type Normalizer struct {
	tr    Translator
	cache *lru.Cache[string, string]
}

func NewNormalizer(tr Translator) (*Normalizer, error) {
	cache, err := lru.New[string, string](512)
	if err != nil {
		return nil, fmt.Errorf("init translation cache: %w", err)
	}
	return &Normalizer{tr: tr, cache: cache}, nil
}

// ToCanonical translates user input into the canonical language. On
// any failure the original text is returned: an untranslated turn is
// preferred over a failed one.
func (n *Normalizer) ToCanonical(ctx context.Context, text, lang string) string {
	return n.translate(ctx, text, lang, Canonical)
}

// ToUser translates a reply into the user's preferred language, again
// falling back to the original on failure.
func (n *Normalizer) ToUser(ctx context.Context, text, lang string) string {
	return n.translate(ctx, text, Canonical, lang)
}

func (n *Normalizer) translate(ctx context.Context, text, src, dst string) string {
	if n == nil || n.tr == nil {
		return text
	}
	if strings.TrimSpace(text) == "" || IsCanonical(src) == IsCanonical(dst) {
		return text
	}
	key := src + "|" + dst + "|" + text
	if cached, ok := n.cache.Get(key); ok {
		return cached
	}
	out, _, err := n.tr.Translate(ctx, text, src, dst)
	if err != nil {
		log.Printf("lingo: translate %s->%s failed, using original: %v", src, dst, err)
		return text
	}
	n.cache.Add(key, out)
	return out
}

// Detect translates input with provider-side language detection and
// reports the inferred preference. It returns the canonical text, the
// detected supported language code ("" when the input already is
// canonical) and whether detection succeeded. The caller persists the
// result; Detect is invoked at most once per session.
func (n *Normalizer) Detect(ctx context.Context, text string) (string, string, bool) {
	if n == nil || n.tr == nil || strings.TrimSpace(text) == "" {
		return text, "", false
	}
	out, detected, err := n.tr.Translate(ctx, text, "unknown", Canonical)
	if err != nil {
		log.Printf("lingo: detect failed, using original: %v", err)
		return text, "", false
	}
	if equalFolded(text, out) {
		// Translation did not change the text: already canonical.
		return text, "", true
	}
	code, ok := MatchTag(detected)
	if !ok || strings.EqualFold(code, Canonical) {
		return out, "", true
	}
	return out, code, true
}

// equalFolded compares ignoring case and whitespace.
func equalFolded(a, b string) bool {
	return strings.EqualFold(squash(a), squash(b))
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
