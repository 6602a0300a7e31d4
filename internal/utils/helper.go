package utils

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}

// PtrString dereferences a string pointer, returning "" for nil.
func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IntPtr returns a pointer to the given int.
func IntPtr(n int) *int {
	return &n
}

// Int32Ptr returns a pointer to the given int32.
func Int32Ptr(n int32) *int32 {
	return &n
}
