package user

type User struct {
	Id          int
	Uid         string
	DisplayName string
	Settings    Settings
}

// Settings holds per-user assistant preferences. Timezone is the IANA zone in
// which the user's spoken dates and times are interpreted.
type Settings struct {
	Timezone         string
	GoogleCalendarId string
}
