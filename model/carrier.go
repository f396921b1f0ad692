package model

// Carrier is admin managed reference data describing a mobile network.
type Carrier struct {
	Id uint32 `storm:"id,increment"`
	//network name as reported by the gateway, lower case
	Name string `storm:"unique"`
	//code returned by the carrier lookup API
	Code        string `storm:"index"`
	DisplayName string
	Username    string
	Password    string
	Sites       []uint32
	IsMajor     bool
}

// HasCredentials reports whether outbound messages can be sent through this carrier.
func (c Carrier) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Site is a regional market.
type Site struct {
	Id          uint32 `storm:"id"`
	Name        string `storm:"unique"`
	Domain      string
	ZipPrefixes []string
}
