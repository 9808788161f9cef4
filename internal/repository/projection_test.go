package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

func TestDerive_PriceFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want int64
	}{
		{"listing price first", `{"rentPriceListing":"1200","rentPriceUnitListing":"999","rentPrice":"888"}`, 1200},
		{"unit listing second", `{"rentPriceUnitListing":"999","rentPrice":"888"}`, 999},
		{"plain price last", `{"rentPrice":"888"}`, 888},
		{"digits extracted from text", `{"rentPrice":"1200元/月"}`, 1200},
		{"numeric value", `{"rentPrice":1500}`, 1500},
		{"missing price is zero", `{}`, 0},
		{"no digits is zero", `{"rentPrice":"面议"}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Derive([]byte(tc.doc))
			require.NoError(t, err)
			require.Equal(t, tc.want, p.PriceMinor)
		})
	}
}

func TestDerive_AreaAndPaymentFallbacks(t *testing.T) {
	p, err := Derive([]byte(`{"houseArea":"72㎡"}`))
	require.NoError(t, err)
	require.Equal(t, "72㎡", p.AreaText)

	// metaInfo 兜底
	p, err = Derive([]byte(`{"metaInfo":[{"name":"使用面积","desc":"45㎡"}]}`))
	require.NoError(t, err)
	require.Equal(t, "45㎡", p.AreaText)

	// rentTerm 只有字符串才当付款方式
	p, err = Derive([]byte(`{"rentTerm":"押一付三"}`))
	require.NoError(t, err)
	require.Equal(t, "押一付三", p.PaymentTerm)

	p, err = Derive([]byte(`{"rentTerm":{"months":3}}`))
	require.NoError(t, err)
	require.Equal(t, "", p.PaymentTerm)
}

func TestDerive_StatusDefaultsToOnline(t *testing.T) {
	p, err := Derive([]byte(`{"status":"whatever"}`))
	require.NoError(t, err)
	require.Equal(t, domain.ListingOnline, p.Status)

	p, err = Derive([]byte(`{"status":"offline"}`))
	require.NoError(t, err)
	require.Equal(t, domain.ListingOffline, p.Status)
}

func TestDerive_IsPure(t *testing.T) {
	doc := []byte(`{"rentPrice":"2300","districtCode":"110108","houseTitle":"两居室 近地铁"}`)
	first, err := Derive(doc)
	require.NoError(t, err)
	second, err := Derive(doc)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "110108", first.DistrictCode)
}

func TestDerive_RejectsInvalidJSON(t *testing.T) {
	_, err := Derive([]byte(`{not json`))
	require.Error(t, err)
}

func TestOwnerContact_FallbackChain(t *testing.T) {
	require.Equal(t, "u1", OwnerContact([]byte(`{"ownerId":"u1","landlordPhone":"13800000000"}`)))
	require.Equal(t, "13800000000", OwnerContact([]byte(`{"landlordPhone":"13800000000","phone":"x"}`)))
	require.Equal(t, "13900000000", OwnerContact([]byte(`{"phone":"13900000000"}`)))
	require.Equal(t, "", OwnerContact([]byte(`{}`)))
}

func TestSummary_CoverFallbackChain(t *testing.T) {
	s := Summary("H1", []byte(`{"mainPic":"a.jpg","housePicture":"b.jpg"}`))
	require.Equal(t, "a.jpg", s.CoverURL)

	s = Summary("H1", []byte(`{"housePicture":[{"picList":["c.jpg","d.jpg"]}]}`))
	require.Equal(t, "c.jpg", s.CoverURL)

	s = Summary("H1", []byte(`{"housePicture":"e.jpg"}`))
	require.Equal(t, "e.jpg", s.CoverURL)

	s = Summary("H1", []byte(`{"title":"整租一居","rentPrice":"1800","location":"回龙观"}`))
	require.Equal(t, "整租一居", s.Title)
	require.Equal(t, "1800", s.Price)
	require.Equal(t, "回龙观", s.Address)
}

func TestMergeDocument_ShallowMergeKeepsID(t *testing.T) {
	stored := []byte(`{"id":"H1","title":"旧标题","rentPrice":"1000","extra":"keep"}`)
	partial := []byte(`{"title":"新标题","id":"H2"}`)

	merged, err := MergeDocument(stored, partial, "H1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(merged, &doc))
	require.Equal(t, "H1", doc["id"])
	require.Equal(t, "新标题", doc["title"])
	require.Equal(t, "1000", doc["rentPrice"])
	require.Equal(t, "keep", doc["extra"])
}

func TestSetDocumentField(t *testing.T) {
	out, err := SetDocumentField([]byte(`{"id":"H1","status":"online"}`), "status", "offline")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Equal(t, "offline", doc["status"])
	require.Equal(t, "H1", doc["id"])
}
