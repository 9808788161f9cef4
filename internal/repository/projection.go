package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// Projection 从房源 Document 派生出的全部筛选列。
// Derive 是纯函数：同一 Document 算多少次结果都一样，
// 所有写路径（发布/编辑/上下架）都必须经过它，不允许单独改列
type Projection struct {
	PriceMinor   int64
	AreaText     string
	PaymentTerm  string
	ProvinceCode string
	CityCode     string
	DistrictCode string
	KeywordText  string
	Status       string
}

// Derive 计算派生列
// 字段回退链与历史数据保持一致：
//   - 价格：rentPriceListing → rentPriceUnitListing → rentPrice → 0（只取数字）
//   - 面积：rentArea → area → houseArea → metaInfo["使用面积"].desc
//   - 付款：payment → rentTerm（仅当是字符串时）
//   - 区编码：districtCode → district_code → areaCode → area_code
func Derive(document []byte) (Projection, error) {
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return Projection{}, fmt.Errorf("invalid listing document: %w", err)
	}
	return deriveFromMap(doc), nil
}

func deriveFromMap(doc map[string]any) Projection {
	p := Projection{
		AreaText:     docString(doc, "rentArea", "area", "houseArea"),
		PaymentTerm:  docString(doc, "payment"),
		ProvinceCode: docString(doc, "provinceCode", "province_code"),
		CityCode:     docString(doc, "cityCode", "city_code"),
		DistrictCode: docString(doc, "districtCode", "district_code", "areaCode", "area_code"),
		Status:       docString(doc, "status"),
	}

	p.PriceMinor = parsePrice(docString(doc, "rentPriceListing", "rentPriceUnitListing", "rentPrice"))

	if p.AreaText == "" {
		p.AreaText = metaDesc(doc, "使用面积")
	}
	if p.PaymentTerm == "" {
		// 旧数据里 rentTerm 可能是对象，只有字符串才当付款方式用
		if s, ok := doc["rentTerm"].(string); ok {
			p.PaymentTerm = s
		}
	}
	if p.Status != domain.ListingOnline && p.Status != domain.ListingOffline {
		p.Status = domain.ListingOnline
	}

	parts := []string{
		docString(doc, "houseTitle"),
		docString(doc, "title"),
		docString(doc, "address"),
		docString(doc, "location"),
		docString(doc, "districtName", "hdicDistrictName"),
		docString(doc, "schoolName"),
	}
	p.KeywordText = strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))

	return p
}

// OwnerContact 解析房源归属人联系方式（不落库，读时实时取）
// 回退链：ownerId → landlordPhone → ownerPhone → phone
func OwnerContact(document []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return ""
	}
	return docString(doc, "ownerId", "landlordPhone", "ownerPhone", "phone")
}

// Summary 拼房源摘要（标题/价格/地址/封面），给预约、合同、足迹的列表用
func Summary(id string, document []byte) domain.ListingSummary {
	s := domain.ListingSummary{ID: id}
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return s
	}
	s.Title = docString(doc, "houseTitle", "title")
	s.Price = docString(doc, "rentPriceListing", "rentPriceUnitListing", "rentPrice")
	s.Address = docString(doc, "address", "location", "districtName")
	s.CoverURL = coverPic(doc)
	return s
}

// MergeDocument 浅合并：partial 的顶层字段覆盖 stored，其余保留；id 不允许被改掉
func MergeDocument(stored, partial []byte, id string) ([]byte, error) {
	var base map[string]any
	if err := json.Unmarshal(stored, &base); err != nil {
		return nil, fmt.Errorf("invalid stored document: %w", err)
	}
	var patch map[string]any
	if err := json.Unmarshal(partial, &patch); err != nil {
		return nil, fmt.Errorf("invalid partial document: %w", err)
	}
	for k, v := range patch {
		base[k] = v
	}
	base["id"] = id
	return json.Marshal(base)
}

// SetDocumentField 改 Document 里的单个顶层字段（上下架用），其余原样保留
func SetDocumentField(stored []byte, key string, value any) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(stored, &doc); err != nil {
		return nil, fmt.Errorf("invalid stored document: %w", err)
	}
	doc[key] = value
	return json.Marshal(doc)
}

// coverPic 封面回退链：mainPic → roomMainPic → housePicture[0].picList[0] → housePicture(字符串)
func coverPic(doc map[string]any) string {
	if s := docString(doc, "mainPic", "roomMainPic"); s != "" {
		return s
	}
	switch hp := doc["housePicture"].(type) {
	case string:
		return hp
	case []any:
		if len(hp) == 0 {
			return ""
		}
		group, ok := hp[0].(map[string]any)
		if !ok {
			return ""
		}
		pics, ok := group["picList"].([]any)
		if !ok || len(pics) == 0 {
			return ""
		}
		if s, ok := pics[0].(string); ok {
			return s
		}
	}
	return ""
}

// metaDesc 从 metaInfo 数组里按 name 取 desc
func metaDesc(doc map[string]any, name string) string {
	meta, ok := doc["metaInfo"].([]any)
	if !ok {
		return ""
	}
	for _, item := range meta {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if asString(m["name"]) == name {
			return asString(m["desc"])
		}
	}
	return ""
}

// docString 依次尝试多个 key，返回第一个非空值（数字也转成字符串）
func docString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(doc[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	return ""
}

// parsePrice 只保留数字位；"1200元/月" → 1200，取不到记 0
func parsePrice(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
