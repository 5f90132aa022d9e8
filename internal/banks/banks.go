// Package banks holds the static directory of supported institutions.
package banks

// InternalCode is the bank code of this institution. Transfers to it resolve
// against local wallets; any other code is an external transfer.
const InternalCode = "050"

// Bank identifies one institution in the directory.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var directory = []Bank{
	{Code: InternalCode, Name: "Owo Bank"},
	{Code: "001", Name: "Access Bank"},
	{Code: "002", Name: "First Bank"},
	{Code: "003", Name: "GTBank"},
	{Code: "004", Name: "UBA"},
	{Code: "005", Name: "Zenith Bank"},
	{Code: "006", Name: "Fidelity Bank"},
	{Code: "030", Name: "Opay"},
	{Code: "032", Name: "Kuda Bank"},
}

// Directory returns all supported banks.
func Directory() []Bank {
	out := make([]Bank, len(directory))
	copy(out, directory)
	return out
}

// Lookup resolves a bank code to its entry.
func Lookup(code string) (Bank, bool) {
	for _, b := range directory {
		if b.Code == code {
			return b, true
		}
	}
	return Bank{}, false
}
