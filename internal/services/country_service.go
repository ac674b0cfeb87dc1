// Package services – CountryDirectory
//
// CountryDirectory serves the dial-code list used by phone entry. It fetches
// the list from the REST Countries API, keeps entries that carry a dial
// prefix, sorts them by name and caches the result in memory. When the remote
// call fails the built-in fallback list is returned together with an error
// wrapping ErrCountriesUnavailable; the fallback is never cached.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/observability"
)

const (
	// DefaultCountriesURL asks only for the fields the directory reads.
	DefaultCountriesURL = "https://restcountries.com/v3.1/all?fields=name,idd,cca2"
	// DefaultCountriesTTL is how long a fetched list is served from memory.
	DefaultCountriesTTL = 24 * time.Hour

	countriesCacheKey = "countries"
	flagURLFormat     = "https://flagcdn.com/w20/%s.png"
)

// FallbackCountries is served when the remote directory cannot be reached.
var FallbackCountries = []domain.Country{
	{Name: "United States", DialCode: "+1", Flag: "🇺🇸"},
	{Name: "India", DialCode: "+91", Flag: "🇮🇳"},
	{Name: "United Kingdom", DialCode: "+44", Flag: "🇬🇧"},
	{Name: "Canada", DialCode: "+1", Flag: "🇨🇦"},
	{Name: "Australia", DialCode: "+61", Flag: "🇦🇺"},
}

// restCountry is the subset of a REST Countries record we decode.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	IDD struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	CCA2 string `json:"cca2"`
}

// CountryDirectory fetches and caches the country list. Safe for concurrent use.
type CountryDirectory struct {
	URL    string
	Client *http.Client

	cache *gocache.Cache
}

// NewCountryDirectory returns a directory reading url (DefaultCountriesURL
// when empty) and caching results for ttl.
func NewCountryDirectory(url string, ttl time.Duration, client *http.Client) *CountryDirectory {
	if url == "" {
		url = DefaultCountriesURL
	}
	if ttl <= 0 {
		ttl = DefaultCountriesTTL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CountryDirectory{
		URL:    url,
		Client: client,
		cache:  gocache.New(ttl, ttl*2),
	}
}

// Countries returns the sorted country list. On failure it returns a copy of
// FallbackCountries and a non-nil error.
func (d *CountryDirectory) Countries(ctx context.Context) ([]domain.Country, error) {
	ctx, span := observability.Tracer("services/countries").Start(ctx, "Countries")
	defer span.End()

	if v, ok := d.cache.Get(countriesCacheKey); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return append([]domain.Country{}, v.([]domain.Country)...), nil
	}

	list, err := d.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback served")
		return append([]domain.Country{}, FallbackCountries...), fmt.Errorf("%w: %v", ErrCountriesUnavailable, err)
	}
	d.cache.Set(countriesCacheKey, list, gocache.DefaultExpiration)
	span.SetAttributes(attribute.Int("countries.count", len(list)))
	return append([]domain.Country{}, list...), nil
}

// Invalidate drops the cached list.
func (d *CountryDirectory) Invalidate() { d.cache.Delete(countriesCacheKey) }

func (d *CountryDirectory) fetch(ctx context.Context) ([]domain.Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return normalizeCountries(raw), nil
}

// normalizeCountries keeps records with a dial root and a suffix list and
// sorts them by English collation of the common name. Countries sharing a
// root across many area codes (e.g. +1) are listed with the bare root.
func normalizeCountries(raw []restCountry) []domain.Country {
	out := make([]domain.Country, 0, len(raw))
	for _, rc := range raw {
		if rc.IDD.Root == "" || rc.IDD.Suffixes == nil {
			continue
		}
		code := rc.IDD.Root
		if len(rc.IDD.Suffixes) == 1 {
			code += rc.IDD.Suffixes[0]
		}
		flag := ""
		if rc.CCA2 != "" {
			flag = fmt.Sprintf(flagURLFormat, strings.ToLower(rc.CCA2))
		}
		out = append(out, domain.Country{
			Name:     rc.Name.Common,
			DialCode: code,
			Flag:     flag,
		})
	}

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
