package membership

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemberStatus(t *testing.T) {
	for _, s := range MemberStatuses {
		got, err := ParseMemberStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseMemberStatus("")
	require.NoError(t, err)
	assert.Equal(t, MemberStatusActive, got)

	_, err = ParseMemberStatus("retired")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, "Invalid status value", err.Error())
}

func TestParseSex(t *testing.T) {
	for _, s := range Sexes {
		got, err := ParseSex(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSex("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseSex("unknown")
	assert.ErrorIs(t, err, ErrInvalidSex)
	assert.Equal(t, "Invalid sex value", err.Error())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-04-12")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1990, d.Year())

	d, err = ParseDate(" ")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("12/04/1990")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNewLevelAndLocation(t *testing.T) {
	l, err := NewLevel("  Beginner ", 1)
	require.NoError(t, err)
	assert.Equal(t, "Beginner", l.Name)
	assert.Equal(t, 1, l.Rank)

	_, err = NewLevel(" ", 1)
	assert.ErrorIs(t, err, ErrLevelNameRequired)

	loc, err := NewLocation("Main hall")
	require.NoError(t, err)
	assert.Equal(t, "Main hall", loc.Name)

	_, err = NewLocation("")
	assert.ErrorIs(t, err, ErrLocationNameRequired)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "25", want: "25"},
		{in: "25.50", want: "25.5"},
		{in: "25,50", want: "25.5"},
		{in: " 0 ", want: "0"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPriceAmountInvalid)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

func TestNewPaymentPrice(t *testing.T) {
	p, err := NewPaymentPrice(decimal.RequireFromString("30.005"), " Monthly ")
	require.NoError(t, err)
	assert.Equal(t, "Monthly", p.Description)
	assert.Equal(t, "30.01", p.Amount.StringFixed(2))

	_, err = NewPaymentPrice(decimal.NewFromInt(10), "")
	assert.ErrorIs(t, err, ErrPriceDescriptionMissing)

	_, err = NewPaymentPrice(decimal.NewFromInt(-10), "Refund")
	assert.ErrorIs(t, err, ErrPriceAmountInvalid)
}

func TestNewPayment(t *testing.T) {
	price := &PaymentPrice{ID: 7, Amount: decimal.NewFromInt(40), Description: "Monthly"}

	t.Run("copies amount from price", func(t *testing.T) {
		p, err := NewPayment(3, "2024-05", price, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.MemberID)
		require.NotNil(t, p.PriceID)
		assert.Equal(t, int64(7), *p.PriceID)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(40)))
		assert.False(t, p.PaidAt.IsZero())
	})

	t.Run("accepts explicit amount", func(t *testing.T) {
		amt := decimal.RequireFromString("12.5")
		p, err := NewPayment(3, "2024-05", nil, &amt)
		require.NoError(t, err)
		assert.Nil(t, p.PriceID)
		assert.True(t, p.Amount.Equal(amt))
	})

	t.Run("requires price or amount", func(t *testing.T) {
		_, err := NewPayment(3, "2024-05", nil, nil)
		assert.ErrorIs(t, err, ErrAmountRequired)
	})

	t.Run("rejects malformed periods", func(t *testing.T) {
		for _, period := range []string{"", "2024", "2024-13", "05-2024", "2024-5"} {
			_, err := NewPayment(3, period, price, nil)
			assert.ErrorIs(t, err, ErrInvalidPeriod, period)
		}
	})
}

func TestMember_FullName(t *testing.T) {
	m := Member{Name: "Ana", Surname: "Kovač"}
	assert.Equal(t, "Ana Kovač", m.FullName())
}
