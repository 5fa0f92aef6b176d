package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/split"
)

func TestCalculate_TwoWayPercentSplit(t *testing.T) {
	net, err := money.FromDecimalString("270.30")
	require.NoError(t, err)

	splits := []payment.SplitInput{
		{RecipientID: "producer_1", Role: "producer", Percent: "70"},
		{RecipientID: "affiliate_9", Role: "affiliate", Percent: "30"},
	}

	got := split.Calculate(net, splits)

	require.Len(t, got, 2)
	assert.Equal(t, "189.21", got[0].Amount.String())
	assert.Equal(t, "81.09", got[1].Amount.String())
}

func TestCalculate_OneCentTwoWaySplit(t *testing.T) {
	net := money.FromCents(1)

	splits := []payment.SplitInput{
		{RecipientID: "a", Role: "producer", Percent: "50"},
		{RecipientID: "b", Role: "affiliate", Percent: "50"},
	}

	got := split.Calculate(net, splits)

	assert.Equal(t, "0.01", got[0].Amount.String())
	assert.Equal(t, "0.00", got[1].Amount.String())
}

func TestCalculate_LargestRemainderWins(t *testing.T) {
	net, err := money.FromDecimalString("10.00")
	require.NoError(t, err)

	splits := []payment.SplitInput{
		{RecipientID: "a", Role: "producer", Percent: "33.33"},
		{RecipientID: "b", Role: "producer", Percent: "33.33"},
		{RecipientID: "c", Role: "producer", Percent: "33.34"},
	}

	got := split.Calculate(net, splits)

	var sum int64
	for _, r := range got {
		sum += r.Amount.Cents()
	}
	assert.Equal(t, net.Cents(), sum)
	assert.Equal(t, "3.34", got[2].Amount.String())
}

func TestCalculate_ZeroNet(t *testing.T) {
	splits := []payment.SplitInput{
		{RecipientID: "a", Role: "producer", Percent: "100"},
	}

	got := split.Calculate(money.Zero, splits)

	assert.Equal(t, "0.00", got[0].Amount.String())
}

func TestCalculate_SingleHundredPercent(t *testing.T) {
	net, err := money.FromDecimalString("150.00")
	require.NoError(t, err)

	splits := []payment.SplitInput{
		{RecipientID: "p1", Role: "producer", Percent: "100"},
	}

	got := split.Calculate(net, splits)
	assert.Equal(t, net.Cents(), got[0].Amount.Cents())
}

func TestCalculate_PreservesOrderAndCardinality(t *testing.T) {
	net, err := money.FromDecimalString("100.00")
	require.NoError(t, err)

	splits := []payment.SplitInput{
		{RecipientID: "a", Role: "producer", Percent: "20"},
		{RecipientID: "b", Role: "producer", Percent: "20"},
		{RecipientID: "c", Role: "producer", Percent: "20"},
		{RecipientID: "d", Role: "producer", Percent: "20"},
		{RecipientID: "e", Role: "producer", Percent: "20"},
	}

	got := split.Calculate(net, splits)

	require.Len(t, got, 5)
	for i, r := range got {
		assert.Equal(t, splits[i].RecipientID, r.RecipientID)
		assert.True(t, r.Amount.Cents() >= 0)
	}
}

func TestCalculate_TieBreakPrefersEarlierIndex(t *testing.T) {
	net := money.FromCents(100)

	splits := []payment.SplitInput{
		{RecipientID: "first", Role: "producer", Percent: "33.33"},
		{RecipientID: "second", Role: "producer", Percent: "33.33"},
		{RecipientID: "third", Role: "producer", Percent: "33.34"},
	}

	got := split.Calculate(net, splits)

	var sum int64
	for _, r := range got {
		sum += r.Amount.Cents()
	}
	assert.Equal(t, int64(100), sum)

	// With 2 cents the exact shares are 0.6666, 0.6666 and 0.6668: "third"
	// takes the first leftover cent, and the tie between "first" and
	// "second" goes to the earlier index.
	tied := split.Calculate(money.FromCents(2), splits)

	assert.Equal(t, "0.01", tied[0].Amount.String())
	assert.Equal(t, "0.00", tied[1].Amount.String())
	assert.Equal(t, "0.01", tied[2].Amount.String())
}
