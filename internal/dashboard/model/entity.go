package model

// MonitoredEntity is an agent registration joined with its linked CI record.
// Discovered fresh on every query; never persisted between calls.
type MonitoredEntity struct {
	ID           string `json:"id"`
	CISysID      string `json:"ci_sys_id"`
	DisplayName  string `json:"display_name"`
	EntityClass  string `json:"entity_class"`
	Platform     string `json:"platform"`
	SupportGroup string `json:"support_group"`
	Location     string `json:"location"`
	IPAddress    string `json:"ip_address"`
}

// SubResource is a monitored sub-resource (disk, interface, ...) owned by
// exactly one entity.
type SubResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
