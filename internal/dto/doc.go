// Package dto contains Data Transfer Objects for HTTP request handling.
//
// Use dto.ParseAndValidate() in handlers to parse and validate requests:
//
//	var req dto.CreateRunRequest
//	if err := dto.ParseAndValidate(c, &req); err != nil {
//	    return err
//	}
//
// Both undecodable JSON and a decoded value failing its validate tags are
// reported as a malformed body.
package dto
