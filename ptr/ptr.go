package ptr

func Int(i int) *int {
	return &i
}

func String(s string) *string {
	return &s
}

func Float64(f float64) *float64 {
	return &f
}

func Bool(b bool) *bool {
	return &b
}
