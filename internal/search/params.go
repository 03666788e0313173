// Package search turns flat query-string parameters into typed filters and
// then into MongoDB predicates. Parsing never fails: a value that cannot be
// used is dropped and its parameter name reported in Ignored.
package search

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tourism/pkg/config"
	httputil "tourism/pkg/http"

	"go.mongodb.org/mongo-driver/bson"
)

// Page is a resolved 1-based page window.
type Page struct {
	Page  int
	Limit int
	Skip  int64
}

// NewPage saturates Skip at math.MaxInt64 so a page far past the end still
// yields a valid, empty window.
func NewPage(page, limit int) Page {
	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)

	skip := int64(math.MaxInt64)
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		skip = int64(page-1) * int64(limit)
	}
	return Page{Page: page, Limit: limit, Skip: skip}
}

// Pagination describes this page of a result set of total documents.
func (p Page) Pagination(total int64) httputil.Pagination {
	return httputil.NewPagination(total, p.Page, p.Limit)
}

// Filters echoes what a search applied and which parameters it dropped.
type Filters struct {
	Applied map[string]any `json:"applied"`
	Ignored []string       `json:"ignored"`
}

func NewFilters(applied map[string]any, ignored []string) Filters {
	if ignored == nil {
		ignored = []string{}
	}
	return Filters{Applied: applied, Ignored: ignored}
}

// parser accumulates the names of parameters it had to drop.
type parser struct {
	values  url.Values
	ignored []string
}

func newParser(values url.Values) *parser {
	return &parser{values: values}
}

func (p *parser) raw(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p *parser) ignore(key string) {
	for _, k := range p.ignored {
		if k == key {
			return
		}
	}
	p.ignored = append(p.ignored, key)
}

// float reads a finite, non-negative number.
func (p *parser) float(key string) *float64 {
	s := p.raw(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		p.ignore(key)
		return nil
	}
	return &v
}

// coordinate reads a finite number within [-limit, limit].
func (p *parser) coordinate(key string, limit float64) *float64 {
	s := p.raw(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		p.ignore(key)
		return nil
	}
	return &v
}

func (p *parser) int(key string) *int {
	s := p.raw(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		p.ignore(key)
		return nil
	}
	return &v
}

// firstInt reads the first of several aliases that is present.
func (p *parser) firstInt(keys ...string) *int {
	for _, k := range keys {
		if p.raw(k) != "" {
			return p.int(k)
		}
	}
	return nil
}

func (p *parser) flag(key string) bool {
	switch strings.ToLower(p.raw(key)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// date accepts YYYY-MM-DD or RFC 3339 and returns UTC.
func (p *parser) date(key string) *time.Time {
	s := p.raw(key)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	p.ignore(key)
	return nil
}

func (p *parser) page() Page {
	page, limit := 1, 0
	if v := p.int("page"); v != nil {
		page = *v
	}
	if v := p.int("limit"); v != nil {
		limit = *v
	}
	return NewPage(page, limit)
}

// containsPattern is a case-insensitive substring match on user input.
func containsPattern(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// exactPattern is a case-insensitive whole-value match on user input.
func exactPattern(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

// rangeOf builds {$gte, $lte} from optional bounds; nil when both are absent.
func rangeOf(min, max *float64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}
