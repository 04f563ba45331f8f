// redact содержит хелперы для безопасного логирования чувствительных значений.
package redact

// Username маскирует имя пользователя, оставляя первые два символа.
// Работает по рунам, чтобы не резать многобайтовые символы.
func Username(s string) string {
	r := []rune(s)
	if len(r) > 2 {
		return string(r[:2]) + "***"
	}

	return "***"
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
