package xbrl

import (
	"log/slog"
	"strings"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

const koreanLang = "ko"

// ResolveLabels builds the tag → Korean caption mapping of a label
// linkbase. Locators, label resources and arcs are joined inside each
// labelLink. When several arcs reach one tag the last one wins, labels
// visited in document order and arcs per label in document order.
func ResolveLabels(doc *Document) domain.LabelMap {
	labels := domain.LabelMap{}
	if doc == nil {
		return labels
	}

	for _, link := range doc.FindAll("labelLink") {
		locators := make(map[string]string)
		for _, loc := range link.FindAll("loc") {
			tag, ok := tagFromHref(loc.Attr("xlink:href"))
			if !ok {
				continue
			}
			locators[loc.Attr("xlink:label")] = tag
		}

		arcs := link.FindAll("labelArc")
		for _, res := range link.FindAll("label") {
			if !isKoreanStandardLabel(res) {
				continue
			}
			resLabel := res.Attr("xlink:label")
			text := strings.TrimSpace(res.Text())
			for _, arc := range arcs {
				if arc.Attr("xlink:to") != resLabel {
					continue
				}
				if tag, ok := locators[arc.Attr("xlink:from")]; ok {
					labels[tag] = text
				}
			}
		}
	}
	return labels
}

// LoadLabels loads a label linkbase from path and resolves it. A missing
// or malformed linkbase yields an empty mapping.
func LoadLabels(path string, logger *slog.Logger) domain.LabelMap {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		logger.Warn("no label linkbase, captions fall back to tag names")
		return domain.LabelMap{}
	}

	doc, err := LoadDocument(path)
	if err != nil {
		logger.Error("failed to load label linkbase",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return domain.LabelMap{}
	}

	labels := ResolveLabels(doc)
	if len(labels) == 0 {
		logger.Warn("label linkbase produced no Korean labels", slog.String("path", path))
	} else {
		logger.Info("resolved Korean labels",
			slog.String("path", path),
			slog.Int("count", len(labels)))
	}
	return labels
}

// tagFromHref takes the fragment of an href and drops the namespace prefix
// up to the first underscore: "x.xsd#ifrs-full_CurrentAssets" → "CurrentAssets".
func tagFromHref(href string) (string, bool) {
	i := strings.IndexByte(href, '#')
	if i < 0 {
		return "", false
	}
	tag := href[i+1:]
	if tag == "" {
		return "", false
	}
	if j := strings.IndexByte(tag, '_'); j >= 0 {
		tag = tag[j+1:]
	}
	return tag, true
}

func isKoreanStandardLabel(n *Node) bool {
	if n.Attr("xml:lang") != koreanLang {
		return false
	}
	role := n.Attr("xlink:role")
	return strings.Contains(role, "label") || strings.Contains(strings.ToLower(role), "standard")
}
