// Package language normalizes the language settings used for transcription
// and upload metadata. Values may be BCP 47 tags ("en-US"), ISO 639 codes
// ("eng") or English names ("english").
package language
