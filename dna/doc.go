// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dna holds the nucleotide-level helpers shared by the simulator:
// alphabets used to accept or reject sampled bases, reverse complementation
// and strand orientation.
package dna
