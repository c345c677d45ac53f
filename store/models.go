package store

type Mood string

const (
	MoodGreat    Mood = "Great"
	MoodGood     Mood = "Good"
	MoodOkay     Mood = "Okay"
	MoodNotGreat Mood = "Not Great"
)

type MealAmount string

const (
	MealAmountAll    MealAmount = "All"
	MealAmountMost   MealAmount = "Most"
	MealAmountSome   MealAmount = "Some"
	MealAmountLittle MealAmount = "Little"
)

type NapQuality string

const (
	NapQualityGreat    NapQuality = "Great"
	NapQualityOkay     NapQuality = "Okay"
	NapQualityRestless NapQuality = "Restless"
)

type DiaperType string

const (
	DiaperTypeWet   DiaperType = "Wet"
	DiaperTypeBM    DiaperType = "BM"
	DiaperTypeBoth  DiaperType = "Both"
	DiaperTypePotty DiaperType = "Potty"
)

type LogStatus string

const (
	StatusInProgress LogStatus = "In Progress"
	StatusCompleted  LogStatus = "Completed"
	StatusSent       LogStatus = "Sent"
)

type HolidayType string

const (
	HolidayClosed  HolidayType = "Closed"
	HolidayHalfDay HolidayType = "Half Day"
	HolidayBreak   HolidayType = "Break"
)

type Relationship string

const (
	RelationshipMom      Relationship = "Mom"
	RelationshipDad      Relationship = "Dad"
	RelationshipGuardian Relationship = "Guardian"
)

type Language string

const (
	LanguageEnglish Language = "English"
	LanguageUrdu    Language = "Urdu"
	LanguagePunjabi Language = "Punjabi"
)

type Child struct {
	Id                string   `json:"id"`
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Nickname          string   `json:"nickname,omitempty"`
	BirthDate         string   `json:"dob"` // YYYY-MM-DD
	Classroom         string   `json:"classroom,omitempty"`
	Allergies         string   `json:"allergies,omitempty"`
	DietaryNotes      string   `json:"dietaryNotes,omitempty"`
	NapNotes          string   `json:"napNotes,omitempty"`
	EmergencyNotes    string   `json:"emergencyNotes,omitempty"`
	Active            bool     `json:"active"`
	ParentIds         []string `json:"parentIds"`
	DailyMedications  []string `json:"dailyMedications,omitempty"`
}

type Parent struct {
	Id                string       `json:"id"`
	FullName          string       `json:"fullName"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone,omitempty"`
	Relationship      Relationship `json:"relationship"`
	PreferredLanguage Language     `json:"preferredLanguage"`
	ReceivesEmail     bool         `json:"receivesEmail"`
}

type Holiday struct {
	Id    string      `json:"id"`
	Name  string      `json:"name"`
	Date  string      `json:"date"` // YYYY-MM-DD
	Type  HolidayType `json:"type"`
	Notes string      `json:"notes,omitempty"`
}

type MealEntry struct {
	Id     string     `json:"id"`
	Time   string     `json:"time"`
	Type   string     `json:"type"` // Breakfast, Lunch, Snack, Other
	Items  string     `json:"items"`
	Amount MealAmount `json:"amount"`
	Notes  string     `json:"notes,omitempty"`
}

type BottleEntry struct {
	Id     string `json:"id"`
	Time   string `json:"time"`
	Type   string `json:"type"`   // Milk, Formula, Water, Other
	Amount string `json:"amount"` // e.g. "6oz"
	Notes  string `json:"notes,omitempty"`
}

type NapEntry struct {
	Id        string     `json:"id"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Quality   NapQuality `json:"quality"`
	Notes     string     `json:"notes,omitempty"`
}

type DiaperPottyEntry struct {
	Id    string     `json:"id"`
	Time  string     `json:"time"`
	Type  DiaperType `json:"type"`
	Notes string     `json:"notes,omitempty"`
}

type ActivityEntry struct {
	Id          string `json:"id"`
	Time        string `json:"time,omitempty"`
	Category    string `json:"category"` // Circle Time, Outdoor, Art, Sensory, Story, Free Play, ...
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
}

type MedicationEntry struct {
	Id     string `json:"id"`
	Time   string `json:"time"`
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Notes  string `json:"notes,omitempty"`
}

type IncidentEntry struct {
	Id             string `json:"id"`
	Time           string `json:"time"`
	Type           string `json:"type"` // Bump, Scratch, Behavior, Medical, Other
	Description    string `json:"description"`
	ActionTaken    string `json:"actionTaken"`
	ParentNotified bool   `json:"parentNotified"`
}

// DailyLog is the per-child, per-day aggregate. Its id is derived from
// (childId, date), see StringGenerator.GenerateDailyLogId.
type DailyLog struct {
	Id             string             `json:"id"`
	ChildId        string             `json:"childId"`
	Date           string             `json:"date"` // YYYY-MM-DD
	ArrivalTime    string             `json:"arrivalTime"`
	DepartureTime  string             `json:"departureTime"`
	OverallMood    Mood               `json:"overallMood"`
	TeacherNotes   string             `json:"teacherNotes"`
	ActivityNotes  string             `json:"activityNotes"`
	SuppliesNeeded string             `json:"suppliesNeeded"`
	Meals          []MealEntry        `json:"meals"`
	Bottles        []BottleEntry      `json:"bottles"`
	Naps           []NapEntry         `json:"naps"`
	Diapers        []DiaperPottyEntry `json:"diapers"`
	Activities     []ActivityEntry    `json:"activities"`
	Medications    []MedicationEntry  `json:"medications"`
	Incidents      []IncidentEntry    `json:"incidents"`
	Status         LogStatus          `json:"status"`
	IsPresent      bool               `json:"isPresent"`
	IncludeTrends  bool               `json:"includeTrends,omitempty"`
}

type Settings struct {
	DaycareName           string `json:"daycareName"`
	FromEmail             string `json:"fromEmail"`
	EmailSignature        string `json:"emailSignature"`
	TestEmail             string `json:"testEmail"`
	AdminPassword         string `json:"adminPassword,omitempty"`
	AutoSendTime          string `json:"autoSendTime,omitempty"`
	SendCopyToSelfDefault bool   `json:"sendCopyToSelfDefault,omitempty"`

	// Outbound relay (EmailJS)
	EmailjsServiceId  string `json:"emailjsServiceId,omitempty"`
	EmailjsTemplateId string `json:"emailjsTemplateId,omitempty"`
	EmailjsPublicKey  string `json:"emailjsPublicKey,omitempty"`

	// Cloud mirror connection. Device-local: never written to the mirror
	// itself and never overwritten by a cloud-origin settings merge.
	CloudUrl     string `json:"cloudUrl,omitempty"`
	CloudAnonKey string `json:"cloudAnonKey,omitempty"`
}

type EmailSendLog struct {
	Id           string   `json:"id"`
	DailyLogId   string   `json:"dailyLogId"`
	SentTo       []string `json:"sentTo"`
	Subject      string   `json:"subject"`
	SentAt       string   `json:"sentAt"` // RFC3339
	Status       string   `json:"status"` // Sent, Failed
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

const (
	SendStatusSent   = "Sent"
	SendStatusFailed = "Failed"
)

// DefaultAdminPassword is the documented out-of-the-box credential. It must
// be changed in any real deployment.
const DefaultAdminPassword = "honeybees2025"

func DefaultSettings() Settings {
	return Settings{
		DaycareName:    "Honeybees Daycare",
		FromEmail:      "reports@honeybeesdaycare.com",
		EmailSignature: "With love,\nHoneybees Daycare Team",
		AdminPassword:  DefaultAdminPassword,
	}
}
