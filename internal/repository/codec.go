package repository

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/criterion"
	"github.com/gudangin/pricing-engine/internal/domain/promotion"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// DecodeCondition parses the JSON wire form of a promotion condition. The
// same shape lives in the promotions JSONB column and in seed files.
func DecodeCondition(raw []byte) (promotion.Condition, error) {
	var dto conditionDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return promotion.Condition{}, errors.Wrap(err, "decode condition")
	}
	return dto.toDomain()
}

// DecodeBenefit parses the JSON wire form of a standalone benefit, as stored
// in the vouchers JSONB column.
func DecodeBenefit(raw []byte) (*promotion.Benefit, error) {
	var dto benefitDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, errors.Wrap(err, "decode benefit")
	}
	return dto.toDomain(), nil
}

// JSON shapes for the JSONB condition and benefit columns. Tags travel in
// their canonical "group:value" form.

type conditionDTO struct {
	Kind     string             `json:"kind"`
	Criteria []conditionCritDTO `json:"criteria"`
	Benefit  *benefitDTO        `json:"benefit,omitempty"`
}

type conditionCritDTO struct {
	Criterion criterionDTO `json:"criterion"`
	Benefit   *benefitDTO  `json:"benefit,omitempty"`
}

type criterionDTO struct {
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	Qty        int64           `json:"qty"`
	FromQty    int64           `json:"from_qty"`
	ToQty      int64           `json:"to_qty"`
	UomType    string          `json:"uom_type,omitempty"`

	Tag         string          `json:"tag,omitempty"`
	TagCriteria *tagCriteriaDTO `json:"tag_criteria,omitempty"`
}

type tagCriteriaDTO struct {
	MinQty     int64  `json:"min_qty"`
	MinUomType string `json:"min_uom_type,omitempty"`

	Items          []string `json:"items,omitempty"`
	ItemMinQty     int64    `json:"item_min_qty"`
	ItemMinUomType string   `json:"item_min_uom_type,omitempty"`

	MinItemCombination int `json:"min_item_combination"`

	IncludedTag           string `json:"included_tag,omitempty"`
	IncludedTagMinQty     int64  `json:"included_tag_min_qty"`
	IncludedTagMinUomType string `json:"included_tag_min_uom_type,omitempty"`

	IsRatioBased         bool `json:"is_ratio_based"`
	IsItemHasMatchingTag bool `json:"is_item_has_matching_tag"`
}

type benefitDTO struct {
	Discount []benefitLineDTO `json:"discount,omitempty"`
	Coin     []benefitLineDTO `json:"coin,omitempty"`
	Product  *freeProductDTO  `json:"product,omitempty"`

	MaxQty     int64  `json:"max_qty"`
	MaxUomType string `json:"max_uom_type,omitempty"`
}

type benefitLineDTO struct {
	Type         string          `json:"type"`
	Value        decimal.Decimal `json:"value"`
	ScaleUomType string          `json:"scale_uom_type,omitempty"`
}

type freeProductDTO struct {
	ProductID string `json:"product_id"`
	RatioX    int64  `json:"ratio_x"`
	RatioY    int64  `json:"ratio_y"`
	MaxQty    int64  `json:"max_qty"`
}

func (d conditionDTO) toDomain() (promotion.Condition, error) {
	cond := promotion.Condition{
		Kind:     promotion.ConditionKind(d.Kind),
		Criteria: make([]promotion.ConditionCriterion, 0, len(d.Criteria)),
	}
	for _, cc := range d.Criteria {
		crit, err := cc.Criterion.toDomain()
		if err != nil {
			return promotion.Condition{}, err
		}
		cond.Criteria = append(cond.Criteria, promotion.ConditionCriterion{
			Criterion: crit,
			Benefit:   cc.Benefit.toDomain(),
		})
	}
	cond.Benefit = d.Benefit.toDomain()
	return cond, nil
}

func (d criterionDTO) toDomain() (criterion.Criterion, error) {
	c := criterion.Criterion{
		Kind:       criterion.Kind(d.Kind),
		Amount:     d.Amount,
		FromAmount: d.FromAmount,
		ToAmount:   d.ToAmount,
		Qty:        uom.Quantity(d.Qty),
		FromQty:    uom.Quantity(d.FromQty),
		ToQty:      uom.Quantity(d.ToQty),
		UomType:    uom.Type(d.UomType),
	}
	if d.Tag != "" {
		t, err := tag.Parse(d.Tag)
		if err != nil {
			return criterion.Criterion{}, errors.Wrap(err, "criterion tag")
		}
		c.Tag = t
	}
	if d.TagCriteria != nil {
		tc, err := d.TagCriteria.toDomain()
		if err != nil {
			return criterion.Criterion{}, err
		}
		c.TagCriteria = tc
	}
	return c, nil
}

func (d tagCriteriaDTO) toDomain() (*criterion.TagCriteria, error) {
	tc := &criterion.TagCriteria{
		MinQty:                uom.Quantity(d.MinQty),
		MinUomType:            uom.Type(d.MinUomType),
		ItemMinQty:            uom.Quantity(d.ItemMinQty),
		ItemMinUomType:        uom.Type(d.ItemMinUomType),
		MinItemCombination:    d.MinItemCombination,
		IncludedTagMinQty:     uom.Quantity(d.IncludedTagMinQty),
		IncludedTagMinUomType: uom.Type(d.IncludedTagMinUomType),
		IsRatioBased:          d.IsRatioBased,
		IsItemHasMatchingTag:  d.IsItemHasMatchingTag,
	}
	for _, id := range d.Items {
		tc.Items = append(tc.Items, criterion.TagCriteriaItem{ID: id})
	}
	if d.IncludedTag != "" {
		t, err := tag.Parse(d.IncludedTag)
		if err != nil {
			return nil, errors.Wrap(err, "included tag")
		}
		tc.IncludedTag = &t
	}
	return tc, nil
}

func (d *benefitDTO) toDomain() *promotion.Benefit {
	if d == nil {
		return nil
	}
	b := &promotion.Benefit{
		MaxQty:     uom.Quantity(d.MaxQty),
		MaxUomType: uom.Type(d.MaxUomType),
	}
	for _, line := range d.Discount {
		b.Discount = append(b.Discount, line.toDomain())
	}
	for _, line := range d.Coin {
		b.Coin = append(b.Coin, line.toDomain())
	}
	if d.Product != nil {
		b.Product = &promotion.FreeProductBenefit{
			ProductID: d.Product.ProductID,
			Ratio:     uom.Ratio{X: d.Product.RatioX, Y: d.Product.RatioY},
			MaxQty:    uom.Quantity(d.Product.MaxQty),
		}
	}
	return b
}

func (d benefitLineDTO) toDomain() promotion.BenefitLine {
	return promotion.BenefitLine{
		Type:         promotion.BenefitType(d.Type),
		Value:        d.Value,
		ScaleUomType: uom.Type(d.ScaleUomType),
	}
}

func benefitLineToDTO(line promotion.BenefitLine) benefitLineDTO {
	return benefitLineDTO{
		Type:         string(line.Type),
		Value:        line.Value,
		ScaleUomType: string(line.ScaleUomType),
	}
}

func conditionToDTO(c promotion.Condition) conditionDTO {
	d := conditionDTO{
		Kind:    string(c.Kind),
		Benefit: benefitToDTO(c.Benefit),
	}
	for _, cc := range c.Criteria {
		d.Criteria = append(d.Criteria, conditionCritDTO{
			Criterion: criterionToDTO(cc.Criterion),
			Benefit:   benefitToDTO(cc.Benefit),
		})
	}
	return d
}

func criterionToDTO(c criterion.Criterion) criterionDTO {
	d := criterionDTO{
		Kind:       string(c.Kind),
		Amount:     c.Amount,
		FromAmount: c.FromAmount,
		ToAmount:   c.ToAmount,
		Qty:        int64(c.Qty),
		FromQty:    int64(c.FromQty),
		ToQty:      int64(c.ToQty),
		UomType:    string(c.UomType),
	}
	if c.Tag != (tag.Tag{}) {
		d.Tag = c.Tag.String()
	}
	if c.TagCriteria != nil {
		d.TagCriteria = tagCriteriaToDTO(c.TagCriteria)
	}
	return d
}

func tagCriteriaToDTO(tc *criterion.TagCriteria) *tagCriteriaDTO {
	d := &tagCriteriaDTO{
		MinQty:                int64(tc.MinQty),
		MinUomType:            string(tc.MinUomType),
		ItemMinQty:            int64(tc.ItemMinQty),
		ItemMinUomType:        string(tc.ItemMinUomType),
		MinItemCombination:    tc.MinItemCombination,
		IncludedTagMinQty:     int64(tc.IncludedTagMinQty),
		IncludedTagMinUomType: string(tc.IncludedTagMinUomType),
		IsRatioBased:          tc.IsRatioBased,
		IsItemHasMatchingTag:  tc.IsItemHasMatchingTag,
	}
	for _, it := range tc.Items {
		d.Items = append(d.Items, it.ID)
	}
	if tc.IncludedTag != nil {
		d.IncludedTag = tc.IncludedTag.String()
	}
	return d
}

func benefitToDTO(b *promotion.Benefit) *benefitDTO {
	if b == nil {
		return nil
	}
	d := &benefitDTO{
		MaxQty:     int64(b.MaxQty),
		MaxUomType: string(b.MaxUomType),
	}
	for _, line := range b.Discount {
		d.Discount = append(d.Discount, benefitLineToDTO(line))
	}
	for _, line := range b.Coin {
		d.Coin = append(d.Coin, benefitLineToDTO(line))
	}
	if b.Product != nil {
		d.Product = &freeProductDTO{
			ProductID: b.Product.ProductID,
			RatioX:    b.Product.Ratio.X,
			RatioY:    b.Product.Ratio.Y,
			MaxQty:    int64(b.Product.MaxQty),
		}
	}
	return d
}
