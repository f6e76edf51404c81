package survival

import "fmt"

// Dtype is the data type used for all dataset values.
type Dtype = float64

// Dataset holds a rectangular data set in column-major form, with a
// name for each column.  All regression models in this package are fit
// to a Dataset.
type Dataset struct {
	data  [][]Dtype
	names []string
}

// NewDataset creates a Dataset from the given columns and column names.
// All columns must have the same length.
func NewDataset(data [][]Dtype, names []string) Dataset {

	if len(data) != len(names) {
		msg := fmt.Sprintf("NewDataset: %d columns but %d names", len(data), len(names))
		panic(msg)
	}

	for j := range data {
		if len(data[j]) != len(data[0]) {
			msg := fmt.Sprintf("NewDataset: column '%s' has length %d, expected %d",
				names[j], len(data[j]), len(data[0]))
			panic(msg)
		}
	}

	return Dataset{
		data:  data,
		names: names,
	}
}

// Names returns the column names of the dataset.
func (ds Dataset) Names() []string {
	return ds.names
}

// Data returns the columns of the dataset.
func (ds Dataset) Data() [][]Dtype {
	return ds.data
}

// NumObs returns the number of rows in the dataset.
func (ds Dataset) NumObs() int {
	if len(ds.data) == 0 {
		return 0
	}
	return len(ds.data[0])
}

// Pos returns the position of the named column, or -1 if it is not
// present.
func (ds Dataset) Pos(name string) int {
	for j, na := range ds.names {
		if na == name {
			return j
		}
	}
	return -1
}

// Col returns the named column.  It panics if the column is not
// present.
func (ds Dataset) Col(name string) []Dtype {
	j := ds.Pos(name)
	if j == -1 {
		msg := fmt.Sprintf("Dataset: column '%s' not found", name)
		panic(msg)
	}
	return ds.data[j]
}
