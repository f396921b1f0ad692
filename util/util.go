package util

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

const PhoneDigits = 10

func FileExists(name string) bool {
	_, err := os.Stat(name)

	if os.IsNotExist(err) {
		return false
	}

	//sometimes there can be permission or other errors
	//here we use a simple logic that if file exists and we can use it then true otherwise false
	return err == nil
}

func GetEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func GetEnvAsInt(name string, defaultVal int) int {
	valueStr := GetEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}

	return defaultVal
}

func GetEnvAsBool(name string, defaultVal bool) bool {
	valueStr := GetEnv(name, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}

	return defaultVal
}

// GetEnvAsList splits a comma separated variable, dropping blank items.
func GetEnvAsList(name string, defaultVal []string) []string {
	valueStr := GetEnv(name, "")
	if IsBlank(valueStr) {
		return defaultVal
	}

	var list []string
	for _, item := range strings.Split(valueStr, ",") {
		if !IsBlank(item) {
			list = append(list, strings.TrimSpace(item))
		}
	}

	return list
}

// GetEnvAsMap parses "key:value,key2:value2" pairs.
func GetEnvAsMap(name string, defaultVal map[string]string) map[string]string {
	items := GetEnvAsList(name, nil)
	if len(items) == 0 {
		return defaultVal
	}

	m := make(map[string]string, len(items))
	for _, item := range items {
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			continue
		}
		m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	return m
}

func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func IsBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

func IsDecimal(s string) bool {
	_, err := strconv.Atoi(s)

	return err == nil
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizePhone strips formatting characters and keeps the last 10 digits,
// so "1 (845) 555-1234" and "18455551234" both become "8455551234".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > PhoneDigits {
		digits = digits[len(digits)-PhoneDigits:]
	}

	return digits
}

// LastDigits returns at most n trailing characters of s.
func LastDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
