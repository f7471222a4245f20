package identity

// UserData is the sink's user_data object. Every key is omitted when its
// source value is absent; nothing is ever sent as an empty string.
type UserData struct {
	Email           string `json:"em,omitempty"`
	Phone           string `json:"ph,omitempty"`
	FirstName       string `json:"fn,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
	City            string `json:"ct,omitempty"`
	State           string `json:"st,omitempty"`
	Country         string `json:"country,omitempty"`
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

// Profile holds the raw identity fields reported by the source platform.
// Last name is not part of the payload and is intentionally not derived from
// the username.
type Profile struct {
	Email      string
	Phone      string
	FirstName  string
	ExternalID string
	City       string
	State      string
	Country    string
}

// Builder turns raw profiles into hashed UserData records.
type Builder struct {
	defaultCountry string
}

// NewBuilder returns a Builder that maps malformed country values to
// defaultCountry.
func NewBuilder(defaultCountry string) *Builder {
	return &Builder{defaultCountry: defaultCountry}
}

// Build normalizes and hashes p and attaches the unhashed client signals.
func (b *Builder) Build(p Profile, c Client) UserData {
	return UserData{
		Email:           Hash(p.Email),
		Phone:           Hash(NormalizePhone(p.Phone)),
		FirstName:       Hash(p.FirstName),
		ExternalID:      Hash(p.ExternalID),
		City:            Hash(NormalizeCity(p.City)),
		State:           Hash(NormalizeState(p.State)),
		Country:         Hash(NormalizeCountry(p.Country, b.defaultCountry)),
		ClientIPAddress: c.IP,
		ClientUserAgent: c.UserAgent,
	}
}

// Fields lists which keys are populated, for logging without values.
func (u UserData) Fields() []string {
	var out []string
	add := func(key, v string) {
		if v != "" {
			out = append(out, key)
		}
	}
	add("em", u.Email)
	add("ph", u.Phone)
	add("fn", u.FirstName)
	add("external_id", u.ExternalID)
	add("ct", u.City)
	add("st", u.State)
	add("country", u.Country)
	add("client_ip_address", u.ClientIPAddress)
	add("client_user_agent", u.ClientUserAgent)
	return out
}
