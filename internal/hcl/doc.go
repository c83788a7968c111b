// Package hcl provides the HCL implementation of config.Loader. It parses
// form definition files, decodes them with gohcl into schema structs and
// translates those into the format-agnostic config.FormModel.
//
// # File layout
//
//	form "order" {
//	  evaluator = "hcl"
//
//	  field "qty" {
//	    type  = "number"
//	    value = 1
//	  }
//
//	  calculation "total" {
//	    formula = "{q} * 2"
//	    variable "q" {
//	      field = "qty"
//	      type  = number
//	    }
//	  }
//	}
//
// Exactly one form block may exist across all loaded files. Calculation
// blocks may also appear at the top level of any file and are merged into
// that form.
package hcl
