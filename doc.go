// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package neurotut holds the biophysical neuron tutorial models.

The models build small compartmental cells and toy spiking networks, run
them, and write membrane voltage traces and spike rasters:

  - sim is the compartmental simulator: sections, Hodgkin-Huxley and
    passive membranes, current clamps, exponential synapses and
    threshold-triggered connections.
  - hhcell is the two-compartment cell, a Hodgkin-Huxley soma with a
    passive dendrite.
  - synpair drives one cell from two others through excitatory and
    inhibitory synapses.
  - pop scatters populations of cells over a canvas and logs their spikes.
  - plots renders the figures.

Run the models with the neurotut command in cmd/neurotut:

	neurotut cell
	neurotut synpair --mode Excite
	neurotut pop --out figs
*/
package neurotut
