package tensor

// Zeros creates a tensor filled with zeros.
//
//	t := tensor.Zeros[float32](Shape{1, 1, 4, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
//	illum := tensor.Full[float32](Shape{1, 1, 3, 3}, 0.5, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Arange creates a tensor holding start, start+1, ... reshaped to shape.
//
//	t := tensor.Arange[float32](0, Shape{1, 1, 4, 4}, backend) // 0..15 row-major
func Arange[T DType, B Backend](start T, shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = start + T(i)
	}
	return t
}
