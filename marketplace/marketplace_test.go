package marketplace

import (
	"slices"
	"testing"
)

func TestLookupKnownMarketplace(t *testing.T) {
	us, err := Lookup("ATVPDKIKX0DER")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if us.CountryCode != "US" || us.BaseURL() != "https://sellercentral.amazon.com" {
		t.Fatalf("unexpected marketplace: %#v", us)
	}
	if us.Endpoint(false) != "https://sellingpartnerapi-na.amazon.com" {
		t.Fatalf("unexpected endpoint %q", us.Endpoint(false))
	}
	if us.Endpoint(true) != "https://sandbox.sellingpartnerapi-na.amazon.com" {
		t.Fatalf("unexpected sandbox endpoint %q", us.Endpoint(true))
	}
	if us.AWSRegion() != "us-east-1" {
		t.Fatalf("unexpected region %q", us.AWSRegion())
	}
}

func TestLookupUnknownMarketplace(t *testing.T) {
	if _, err := Lookup("NOPE"); err == nil {
		t.Fatalf("expected unknown marketplace error")
	}
}

func TestIdentifiersAndCountryLookup(t *testing.T) {
	ids := Identifiers()
	if len(ids) != len(All()) {
		t.Fatalf("expected one identifier per marketplace, got %d", len(ids))
	}
	if !slices.Contains(ids, "A1PA6795UKMFR9") {
		t.Fatalf("expected DE marketplace in identifiers")
	}
	jp, ok := ByCountry("jp")
	if !ok || jp.Region != RegionFarEast {
		t.Fatalf("unexpected JP marketplace: %#v", jp)
	}
	region, ok := RegionForHost("sandbox.sellingpartnerapi-eu.amazon.com")
	if !ok || region != "eu-west-1" {
		t.Fatalf("unexpected region for sandbox eu host: %q", region)
	}
}
