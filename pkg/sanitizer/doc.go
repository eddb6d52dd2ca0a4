// Package sanitizer normalizes user supplied unit and guest data before validation and storage.
//
// All functions are idempotent. Invalid input is reduced to an empty value instead of
// returning an error, so the validator downstream reports it as missing.
//
// Normalization includes:
//   - Phone numbers: E.164 via libphonenumber
//   - Emails: trimmed and lowercased
//   - Names and free text: collapsed whitespace
//   - Unit numbers: trimmed and uppercased ("a-101" becomes "A-101")
//   - Features: lowercased labels with duplicates removed
//   - Image URLs: https scheme with a lowercase host
package sanitizer
