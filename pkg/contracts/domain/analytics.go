package domain

// ColumnStats holds the descriptive statistics of one numeric column
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// CorrelationMatrix is a square Pearson correlation matrix; Values[i][j]
// is the correlation between Columns[i] and Columns[j].
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation between columns a and b, and false when either
// column is not part of the matrix.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// DistributionShape describes the tails and asymmetry of a column
type DistributionShape struct {
	Column   string  `json:"column"`
	Kurtosis float64 `json:"kurtosis"` // Fisher (excess) kurtosis
	Skewness float64 `json:"skewness"`
}

// GroupMean is the mean of a value column over the rows sharing Key
type GroupMean struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Summary bundles every statistic computed over the cleaned dataset
type Summary struct {
	Rows        int               `json:"rows"`
	Describe    []ColumnStats     `json:"describe"`
	Correlation CorrelationMatrix `json:"correlation"`
	Price       DistributionShape `json:"price"`
}

// Grouping is the mean price per distinct value of one dimension column
type Grouping struct {
	Dimension string      `json:"dimension"`
	Groups    []GroupMean `json:"groups"`
}
