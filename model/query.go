package model

// LanguagesQuery holds the optional query parameters of the languages routes
type LanguagesQuery struct {
	User    string `form:"user"`    // expected owner of the token, the request is refused when it differs
	Refresh bool   `form:"refresh"` // bypass the statistics cache
}

// ToCredential builds the credential for the access token extracted from the request
func (params LanguagesQuery) ToCredential(accessToken string) Credential {
	return Credential{
		AccessToken: accessToken,
		UserID:      params.User,
	}
}
