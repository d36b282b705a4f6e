package discovery

import "cachelock-service/pkg/connection"

// ConnectionResponse is the registry's JSON answer for a discovery key.
type ConnectionResponse struct {
	Key  string `json:"key"`
	URI  string `json:"uri,omitempty"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// ToRecord converts the response to a connection record.
func (r *ConnectionResponse) ToRecord() *connection.ConnectionRecord {
	return &connection.ConnectionRecord{
		URI:  r.URI,
		Host: r.Host,
		Port: r.Port,
	}
}

// CredentialResponse is the registry's JSON answer for a credential key.
type CredentialResponse struct {
	Key      string `json:"key"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// ToRecord converts the response to a credential record.
func (r *CredentialResponse) ToRecord() *connection.CredentialRecord {
	return &connection.CredentialRecord{
		Username: r.Username,
		Password: r.Password,
	}
}
