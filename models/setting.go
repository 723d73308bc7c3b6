// models/setting.go
package models

// Setting keys
const (
	SettingTopicRegistration = "topicRegistration"
)

// Setting is an admin-managed feature switch. When disabled, the guarded
// endpoint returns 403 with Reason passed through verbatim.
type Setting struct {
	Key     string `json:"key" bson:"key"`
	Enabled bool   `json:"enabled" bson:"enabled"`
	Reason  string `json:"reason,omitempty" bson:"reason,omitempty"`
}
