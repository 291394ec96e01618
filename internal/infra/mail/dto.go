package mail

type DelayDigestData struct {
	Total      int
	Threshold  int
	Categories []CategoryLine
}

type CategoryLine struct {
	Label string
	Count int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
