package providers

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kajdahl/booklog/internal/isbn"
	"github.com/kajdahl/booklog/internal/util"
)

// Structured data embedded by the retail sites, when present, beats
// any of the heuristics below.
type jsonldBook struct {
	Title     string
	Author    string
	ISBN13    string
	Thumbnail string
}

// parseJSONLD walks every ld+json script looking for a Book or Product
// object. Malformed blocks are skipped.
func parseJSONLD(doc *goquery.Document) jsonldBook {
	var out jsonldBook
	if doc == nil {
		return out
	}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		objs, ok := data.([]any)
		if !ok {
			objs = []any{data}
		}
		for _, o := range objs {
			obj, ok := o.(map[string]any)
			if !ok {
				continue
			}
			t, _ := obj["@type"].(string)
			switch strings.ToLower(t) {
			case "book", "product":
			default:
				continue
			}
			if out.Title == "" {
				name, _ := obj["name"].(string)
				if name == "" {
					name, _ = obj["headline"].(string)
				}
				out.Title = util.Normalize(name)
			}
			if out.Author == "" {
				out.Author = jsonldAuthor(obj["author"])
			}
			if out.ISBN13 == "" {
				raw, _ := obj["isbn"].(string)
				if raw == "" {
					raw, _ = obj["gtin13"].(string)
				}
				if raw == "" {
					raw, _ = obj["sku"].(string)
				}
				if c := isbn.Clean(raw); len(c) == 13 && isbn.ValidISBN13(c) {
					out.ISBN13 = c
				}
			}
			if out.Thumbnail == "" {
				switch img := obj["image"].(type) {
				case string:
					out.Thumbnail = util.SecureURL(img)
				case []any:
					if len(img) > 0 {
						if s, ok := img[0].(string); ok {
							out.Thumbnail = util.SecureURL(s)
						}
					}
				}
			}
		}
	})
	return out
}

func jsonldAuthor(v any) string {
	switch a := v.(type) {
	case string:
		return util.Normalize(a)
	case map[string]any:
		name, _ := a["name"].(string)
		return util.Normalize(name)
	case []any:
		var names []string
		for _, el := range a {
			switch e := el.(type) {
			case string:
				names = append(names, e)
			case map[string]any:
				if n, _ := e["name"].(string); n != "" {
					names = append(names, n)
				}
			}
		}
		return util.Normalize(strings.Join(names, ", "))
	}
	return ""
}

// ogMeta reads the Open Graph (or twitter fallback) title and image.
func ogMeta(doc *goquery.Document) (title, image string) {
	if doc == nil {
		return "", ""
	}
	get := func(prop string) string {
		sel := doc.Find(`meta[property="` + prop + `"], meta[name="` + prop + `"]`).First()
		return strings.TrimSpace(sel.AttrOr("content", ""))
	}
	title = util.FirstNonEmpty(get("og:title"), get("twitter:title"))
	image = util.SecureURL(util.FirstNonEmpty(get("og:image"), get("twitter:image")))
	return title, image
}

var (
	pagesRe      = regexp.MustCompile(`(?i)(\d{2,4})\s+(sider|sidor|pages)`)
	publisherRe  = regexp.MustCompile(`(?i)(förlag|forlag|publisher)\s*[:\-]?\s*([A-Za-z0-9 .,&\-’'ÆØÅæøåÉé]+)`)
	languageRe   = regexp.MustCompile(`(?i)(språk|sprog|language)\s*[:\-]?\s*([A-Za-zæøåÄÖÅÉÍÓÚáéíóúñ\-]+)`)
	isbn13TextRe = regexp.MustCompile(`\b97[89]\d{10}\b`)
	any13TextRe  = regexp.MustCompile(`\b\d{13}\b`)
)

// pageCountFromText scans rendered page text for a "412 sider" style
// phrase in the site's language.
func pageCountFromText(text string) int {
	m := pagesRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func publisherFromText(text string) string {
	m := publisherRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return util.Normalize(strings.Trim(m[2], " .,-"))
}

func languageFromText(text string) string {
	m := languageRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return util.Normalize(m[2])
}

// isbn13FromPageText prefers Bookland-prefixed runs, then any valid
// 13-digit run.
func isbn13FromPageText(text string) string {
	for _, c := range isbn13TextRe.FindAllString(text, -1) {
		if isbn.ValidISBN13(c) {
			return c
		}
	}
	for _, c := range any13TextRe.FindAllString(text, -1) {
		if isbn.ValidISBN13(c) {
			return c
		}
	}
	return ""
}

var siteSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\|\s*saxo(?:\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*saxo(?:\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*•\s*saxo(?:\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*\|\s*adlibris(?:\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*adlibris(?:\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*\|\s*imusic(?:\.dk|\.com)?\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*imusic(?:\.dk|\.com)?\s*$`),
}

var formatSuffixRe = regexp.MustCompile(`(?i)\s*[–\-]\s*(bog|paperback|hardback|hardcover|indbundet)\b.*$`)

// cleanProductTitle strips known site suffixes, an author hint, format
// suffixes, and finally truncates at the first separator that looks
// like an author/format tail.
func cleanProductTitle(raw, authorHint string) string {
	t := util.Normalize(raw)
	if t == "" {
		return ""
	}
	for _, re := range siteSuffixRes {
		t = re.ReplaceAllString(t, "")
	}
	if authorHint != "" {
		ah := regexp.QuoteMeta(util.Normalize(authorHint))
		if re, err := regexp.Compile(`(?i)\s*[–\-]\s*` + ah + `\b.*$`); err == nil {
			t = re.ReplaceAllString(t, "")
		}
	}
	t = formatSuffixRe.ReplaceAllString(t, "")
	for _, sep := range []string{" – ", " — ", " - ", " | "} {
		if i := strings.Index(t, sep); i >= 0 {
			left := strings.TrimSpace(t[:i])
			if len(left) >= 2 {
				t = left
				break
			}
		}
	}
	return strings.TrimSpace(t)
}
