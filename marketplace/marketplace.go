// Package marketplace is the static reference table of Selling Partner API
// marketplaces: identifier, country, region, Seller Central base URL and the
// regional SP-API endpoint.
package marketplace

import (
	"fmt"
	"slices"
	"strings"
)

type Region string

const (
	RegionNorthAmerica Region = "na"
	RegionEurope       Region = "eu"
	RegionFarEast      Region = "fe"
)

type regionEndpoint struct {
	host      string
	awsRegion string
}

var regionEndpoints = map[Region]regionEndpoint{
	RegionNorthAmerica: {host: "sellingpartnerapi-na.amazon.com", awsRegion: "us-east-1"},
	RegionEurope:       {host: "sellingpartnerapi-eu.amazon.com", awsRegion: "eu-west-1"},
	RegionFarEast:      {host: "sellingpartnerapi-fe.amazon.com", awsRegion: "us-west-2"},
}

type Marketplace struct {
	ID          string
	CountryCode string
	Region      Region
	SellerURL   string
}

func (m Marketplace) Identifier() string {
	return m.ID
}

// BaseURL is the Seller Central origin used to build consent URLs.
func (m Marketplace) BaseURL() string {
	return m.SellerURL
}

// Endpoint returns the SP-API origin of the marketplace region.
func (m Marketplace) Endpoint(sandbox bool) string {
	endpoint, ok := regionEndpoints[m.Region]
	if !ok {
		return ""
	}
	host := endpoint.host
	if sandbox {
		host = "sandbox." + host
	}
	return "https://" + host
}

// AWSRegion is the signing region of the marketplace endpoint.
func (m Marketplace) AWSRegion() string {
	return regionEndpoints[m.Region].awsRegion
}

var table = []Marketplace{
	{ID: "A2EUQ1WTGCTBG2", CountryCode: "CA", Region: RegionNorthAmerica, SellerURL: "https://sellercentral.amazon.ca"},
	{ID: "ATVPDKIKX0DER", CountryCode: "US", Region: RegionNorthAmerica, SellerURL: "https://sellercentral.amazon.com"},
	{ID: "A1AM78C64UM0Y8", CountryCode: "MX", Region: RegionNorthAmerica, SellerURL: "https://sellercentral.amazon.com.mx"},
	{ID: "A2Q3Y263D00KWC", CountryCode: "BR", Region: RegionNorthAmerica, SellerURL: "https://sellercentral.amazon.com.br"},
	{ID: "A1RKKUPIHCS9HS", CountryCode: "ES", Region: RegionEurope, SellerURL: "https://sellercentral-europe.amazon.com"},
	{ID: "A1F83G8C2ARO7P", CountryCode: "GB", Region: RegionEurope, SellerURL: "https://sellercentral-europe.amazon.com"},
	{ID: "A13V1IB3VIYZZH", CountryCode: "FR", Region: RegionEurope, SellerURL: "https://sellercentral-europe.amazon.com"},
	{ID: "AMEN7PMS3EDWL", CountryCode: "BE", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.com.be"},
	{ID: "A1805IZSGTT6HS", CountryCode: "NL", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.nl"},
	{ID: "A1PA6795UKMFR9", CountryCode: "DE", Region: RegionEurope, SellerURL: "https://sellercentral-europe.amazon.com"},
	{ID: "APJ6JRA9NG5V4", CountryCode: "IT", Region: RegionEurope, SellerURL: "https://sellercentral-europe.amazon.com"},
	{ID: "A2NODRKZP88ZB9", CountryCode: "SE", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.se"},
	{ID: "AE08WJ6YKNBMC", CountryCode: "ZA", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.co.za"},
	{ID: "A1C3SOZRARQ6R3", CountryCode: "PL", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.pl"},
	{ID: "ARBP9OOSHTCHU", CountryCode: "EG", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.eg"},
	{ID: "A33AVAJ2PDY3EV", CountryCode: "TR", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.com.tr"},
	{ID: "A17E79C6D8DWNP", CountryCode: "SA", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.sa"},
	{ID: "A2VIGQ35RCS4UG", CountryCode: "AE", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.ae"},
	{ID: "A21TJRUUN4KGV", CountryCode: "IN", Region: RegionEurope, SellerURL: "https://sellercentral.amazon.in"},
	{ID: "A19VAU5U5O7RUS", CountryCode: "SG", Region: RegionFarEast, SellerURL: "https://sellercentral.amazon.sg"},
	{ID: "A39IBJ37TRP1C6", CountryCode: "AU", Region: RegionFarEast, SellerURL: "https://sellercentral.amazon.com.au"},
	{ID: "A1VC38T7YXB528", CountryCode: "JP", Region: RegionFarEast, SellerURL: "https://sellercentral.amazon.co.jp"},
}

// Lookup resolves a marketplace by identifier.
func Lookup(id string) (Marketplace, error) {
	id = strings.TrimSpace(id)
	for _, entry := range table {
		if entry.ID == id {
			return entry, nil
		}
	}
	return Marketplace{}, fmt.Errorf("marketplace: unknown marketplace id %q", id)
}

func ByCountry(countryCode string) (Marketplace, bool) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	for _, entry := range table {
		if entry.CountryCode == countryCode {
			return entry, true
		}
	}
	return Marketplace{}, false
}

func All() []Marketplace {
	return slices.Clone(table)
}

// Identifiers lists every known marketplace id in table order.
func Identifiers() []string {
	out := make([]string, 0, len(table))
	for _, entry := range table {
		out = append(out, entry.ID)
	}
	return out
}

// RegionForHost maps an SP-API host (sandbox included) to its signing region.
func RegionForHost(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "sandbox.")
	for _, endpoint := range regionEndpoints {
		if endpoint.host == host {
			return endpoint.awsRegion, true
		}
	}
	return "", false
}
