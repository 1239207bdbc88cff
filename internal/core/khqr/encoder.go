package khqr

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"
	"github.com/soktep/khqrpay/internal/core/domain"
)

// EMVCo merchant-presented QR tags, in the fixed order they are emitted.
const (
	tagPayloadFormat     = "00"
	tagPointOfInitiation = "01"
	tagMerchantAccount   = "29"
	tagMerchantCategory  = "52"
	tagCurrency          = "53"
	tagAmount            = "54"
	tagCountry           = "58"
	tagMerchantName      = "59"
	tagMerchantCity      = "60"
	tagAdditionalData    = "62"
	tagCRC               = "63"

	subTagProvider   = "00"
	subTagAccount    = "01"
	subTagBillNumber = "01"
	subTagMobile     = "02"
	subTagStoreLabel = "03"

	payloadFormatValue = "01"
	// Dynamic code: the amount is embedded, the QR is good for one payment.
	initiationDynamic = "12"
	crcLengthLiteral  = "04"

	maxValueBytes = 99
)

// field emits TAG + LENGTH + VALUE. LENGTH is the byte length of VALUE as two
// decimal digits, so multi-byte merchant names count encoded bytes, not runes.
func field(tag, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: empty value for tag %s", domain.ErrInvalidField, tag)
	}
	n := len(value)
	if n > maxValueBytes {
		return "", fmt.Errorf("%w: tag %s value is %d bytes", domain.ErrFieldTooLong, tag, n)
	}
	return fmt.Sprintf("%s%02d%s", tag, n, value), nil
}

// FormatAmount renders amount with the currency's minor-unit digits:
// exactly 2 decimals for USD, a bare integer for KHR.
func FormatAmount(amount decimal.Decimal, currency domain.Currency) (string, error) {
	if !currency.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, currency)
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount)
	}
	scaled := amount.Rescale(currency.Exponent())
	if scaled.Cmp(amount) != 0 {
		return "", fmt.Errorf("%w: %s has more precision than %s allows", domain.ErrInvalidAmount, amount, currency)
	}
	return scaled.String(), nil
}

// Encode builds the finalized KHQR payload string for an order.
// The CRC tag is appended with its value omitted from the CRC input: the
// checksum is computed over everything up to and including "6304", then the
// 4 hex digits complete the string.
func Encode(order *domain.Order, merchant *domain.Merchant) (string, error) {
	if order.MerchantAccount == "" {
		return "", domain.ErrMerchantAccountMissing
	}

	amount, err := FormatAmount(order.Amount, order.Currency)
	if err != nil {
		return "", err
	}

	account, err := nested(tagMerchantAccount,
		sub{subTagProvider, merchant.ProviderID},
		sub{subTagAccount, order.MerchantAccount},
	)
	if err != nil {
		return "", err
	}

	additional, err := nested(tagAdditionalData,
		sub{subTagBillNumber, order.BillReference},
		sub{subTagMobile, merchant.Phone},
		sub{subTagStoreLabel, merchant.StoreLabel},
	)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range []struct {
		tag   string
		value string
	}{
		{tagPayloadFormat, payloadFormatValue},
		{tagPointOfInitiation, initiationDynamic},
		{"", account},
		{tagMerchantCategory, merchant.CategoryCode},
		{tagCurrency, order.Currency.NumericCode()},
		{tagAmount, amount},
		{tagCountry, merchant.CountryCode},
		{tagMerchantName, merchant.Name},
		{tagMerchantCity, merchant.City},
		{"", additional},
	} {
		if f.tag == "" {
			// Pre-encoded nested template.
			b.WriteString(f.value)
			continue
		}
		s, err := field(f.tag, f.value)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}

	crcInput := b.String() + tagCRC + crcLengthLiteral
	return crcInput + ChecksumHex([]byte(crcInput)), nil
}

type sub struct {
	tag   string
	value string
}

// nested encodes a template with sub-fields as its value. Empty optional
// sub-values are skipped; the first sub-field is required.
func nested(tag string, subs ...sub) (string, error) {
	var b strings.Builder
	for i, s := range subs {
		if s.value == "" && i > 0 {
			continue
		}
		f, err := field(s.tag, s.value)
		if err != nil {
			return "", err
		}
		b.WriteString(f)
	}
	return field(tag, b.String())
}

// Verify reports whether the final 4 characters of payload equal the CRC16
// of everything preceding them.
func Verify(payload string) bool {
	if len(payload) <= 4 {
		return false
	}
	body, crc := payload[:len(payload)-4], payload[len(payload)-4:]
	return ChecksumHex([]byte(body)) == crc
}
