package settings

import (
	"net"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// NewValidator returns a validator with the custom rules used by the form and settings types:
// wgkey (WireGuard key), cidrlist and iplist (comma separated lists).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("wgkey", wgKey)
	_ = v.RegisterValidation("cidrlist", cidrList)
	_ = v.RegisterValidation("iplist", ipList)
	return v
}

var wgKey validator.Func = func(fl validator.FieldLevel) bool {
	return domain.IsValidKey(fl.Field().String())
}

var cidrList validator.Func = func(fl validator.FieldLevel) bool {
	entries := splitList(fl.Field().String())
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if _, _, err := net.ParseCIDR(entry); err != nil {
			return false
		}
	}
	return true
}

var ipList validator.Func = func(fl validator.FieldLevel) bool {
	entries := splitList(fl.Field().String())
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if net.ParseIP(entry) == nil {
			return false
		}
	}
	return true
}

func splitList(value string) []string {
	var entries []string
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
