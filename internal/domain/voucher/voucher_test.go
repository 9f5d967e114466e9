package voucher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCombinability(t *testing.T) {
	general := &Voucher{ExternalID: "v-general", Scope: General}
	itemScoped := &Voucher{ExternalID: "v-item-1", Scope: Item}
	itemCombinable := &Voucher{ExternalID: "v-item-2", Scope: Item, Combinable: true}

	ResolveCombinability([]*Voucher{general, itemScoped, itemCombinable}, false)

	assert.Equal(t, []string{"v-item-1"}, general.NonCombinable)
	assert.Equal(t, []string{"v-general"}, itemScoped.NonCombinable)
	assert.Empty(t, itemCombinable.NonCombinable)

	assert.False(t, general.CombinableWith(itemScoped))
	assert.False(t, itemScoped.CombinableWith(general))
	assert.True(t, general.CombinableWith(itemCombinable))
	assert.True(t, itemCombinable.CombinableWith(general))
}

func TestResolveCombinability_GeneralCombinable(t *testing.T) {
	general := &Voucher{ExternalID: "v-general", Scope: General}
	itemScoped := &Voucher{ExternalID: "v-item-1", Scope: Item}

	ResolveCombinability([]*Voucher{general, itemScoped}, true)

	assert.Empty(t, general.NonCombinable)
	assert.Empty(t, itemScoped.NonCombinable)
}

func TestRegisterNonCombinable_Dedup(t *testing.T) {
	v := &Voucher{ExternalID: "a"}
	v.RegisterNonCombinable("b")
	v.RegisterNonCombinable("b")
	assert.Equal(t, []string{"b"}, v.NonCombinable)
}

func TestResolveCombinability_GroupVoucher(t *testing.T) {
	general := &Voucher{ExternalID: "v-general", Scope: General}
	group := &Voucher{ExternalID: "v-group", Scope: Group}

	ResolveCombinability([]*Voucher{general, group}, false)

	assert.Equal(t, []string{"v-group"}, general.NonCombinable)
	assert.Equal(t, []string{"v-general"}, group.NonCombinable)
}
