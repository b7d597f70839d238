package chi

import (
	"math"
	"net/url"
	"reflect"
	"testing"
)

func TestBindSearchParams(t *testing.T) {
	values, err := url.ParseQuery("q=%20lyceum&levels=HAVO,vwo&levels=VMBO&lat=52.3&lon=x&take=12&favorites=a,,b")
	if err != nil {
		t.Fatal(err)
	}
	p := bindSearchParams(values)
	qp := p.Query()

	if qp.Q != " lyceum" {
		t.Errorf("q = %q", qp.Q)
	}
	if want := []string{"HAVO", "vwo", "VMBO"}; !reflect.DeepEqual(qp.Levels, want) {
		t.Errorf("levels = %v, want %v", qp.Levels, want)
	}
	if qp.Lat == nil || *qp.Lat != 52.3 {
		t.Errorf("lat = %v", qp.Lat)
	}
	if qp.Lon != nil {
		t.Errorf("unparseable lon must be absent, got %v", *qp.Lon)
	}
	if qp.Take == nil || *qp.Take != 12 {
		t.Errorf("take = %v", qp.Take)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(p.FavoriteIDs(), want) {
		t.Errorf("favorites = %v", p.FavoriteIDs())
	}
}

func TestBindSearchParams_Absent(t *testing.T) {
	p := bindSearchParams(url.Values{})
	if p.FavoriteIDs() != nil {
		t.Error("absent favorites must be nil")
	}
	qp := p.Query()
	if qp.Levels != nil || qp.Lat != nil || qp.Take != nil || qp.Q != "" {
		t.Errorf("expected zero params, got %+v", qp)
	}
}

func TestBindSearchParams_NonFinite(t *testing.T) {
	p := bindSearchParams(url.Values{"radiusKm": {"NaN"}})
	// NaN parses; the query layer drops non-finite values.
	if p.RadiusKm == nil || !math.IsNaN(*p.RadiusKm) {
		t.Errorf("radiusKm = %v", p.RadiusKm)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{" a, b ", "", "c,,"})
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
