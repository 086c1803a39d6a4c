package enum

// PriceDataType selects which partition of a price series to read.
type PriceDataType uint8

const (
	_price_data_type_beg PriceDataType = iota
	PriceDataActual
	PriceDataSynthetic
	PriceDataBoth
	_price_data_type_end
)

func (p PriceDataType) IsAvailable() bool {
	return p > _price_data_type_beg && p < _price_data_type_end
}

// IncludesActual reports whether the selector covers the actual partition.
func (p PriceDataType) IncludesActual() bool {
	return p == PriceDataActual || p == PriceDataBoth
}

// IncludesSynthetic reports whether the selector covers the synthetic partition.
func (p PriceDataType) IncludesSynthetic() bool {
	return p == PriceDataSynthetic || p == PriceDataBoth
}
