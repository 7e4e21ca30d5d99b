package validate

import "regexp"

// Vietnamese mobile numbers: optional 0/84/+84 prefix followed by a
// carrier digit (3/5/7/8/9) and 8 more digits.
var phonePattern = regexp.MustCompile(`^(0|84|\+84)?[35789][0-9]{8}$`)

// OTPLength is the required length of a one-time passcode
const OTPLength = 6

// Phone reports whether s is a valid Vietnamese mobile number
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// OTP reports whether s has the shape of a one-time passcode
func OTP(s string) bool {
	return len(s) == OTPLength
}
