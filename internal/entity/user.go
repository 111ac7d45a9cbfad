package entity

// User identifies the current actor for targeting checks and the analytics
// role breakdown. Roles follow the school app conventions (admin, guru,
// siswa); ExtraRole carries secondary duties such as wali_kelas or pustakawan.
type User struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	ExtraRole string `json:"extra_role,omitempty"`
}
