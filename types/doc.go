/*
Package types holds the error taxonomy shared by every provider family.

All failures crossing the provider boundary are *Error values:

  - UNKNOWN_PROVIDER      : key not registered; Available lists the valid keys
  - INVALID_PROVIDER      : registration rejected; the registry is left unchanged
  - UNSUPPORTED_CAPABILITY: capability invoked on a provider that has no implementation
  - ADAPTER_FAILURE       : vendor call failed; Reason, HTTPStatus and Cause carry detail

Use IsCode / AsError to inspect errors after wrapping with %w.
*/
package types
